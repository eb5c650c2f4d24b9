package controllers

import (
	"net/http"

	"github.com/veloraworld/velora-backend/api/responses"
	contentsvc "github.com/veloraworld/velora-backend/internal/content"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
)

// PublicHomepageContent serves the landing page media block.
func PublicHomepageContent(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		block, err := svc.Homepage(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, block)
	}
}
