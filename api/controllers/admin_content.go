package controllers

import (
	"net/http"

	"github.com/veloraworld/velora-backend/api/responses"
	"github.com/veloraworld/velora-backend/api/validators"
	contentsvc "github.com/veloraworld/velora-backend/internal/content"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
)

// AdminUpdateHomepage patches the landing page media. Omitted fields keep
// their stored values.
func AdminUpdateHomepage(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		var payload contentsvc.UpdateHomepageInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		block, err := svc.UpdateHomepage(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, block)
	}
}
