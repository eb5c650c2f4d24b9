package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/veloraworld/velora-backend/pkg/logger"
)

// CartSessionHeader carries the anonymous storefront session identifier.
const CartSessionHeader = "X-Cart-Session"

// CartSession resolves the storefront session from the request header,
// minting a fresh identifier when the client has none yet. The resolved
// value is echoed back so the storefront can persist it.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if session == "" {
				session = uuid.NewString()
			}

			w.Header().Set(CartSessionHeader, session)

			ctx := WithCartSession(r.Context(), session)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, session)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
