package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/veloraworld/velora-backend/api/responses"
	pkgauth "github.com/veloraworld/velora-backend/pkg/auth"
	"github.com/veloraworld/velora-backend/pkg/config"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
)

// Auth validates the Bearer token on admin routes and seeds the request
// context with the authenticated admin's identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token"))
				return
			}

			adminID := claims.AdminID.String()
			ctx = context.WithValue(ctx, ctxAdminID, adminID)
			ctx = context.WithValue(ctx, ctxAdminEmail, claims.Email)
			if logg != nil {
				ctx = logg.WithAdminID(ctx, adminID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
