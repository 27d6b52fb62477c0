package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/paclead/splitsettle/api/responses"
	pkgAuth "github.com/paclead/splitsettle/pkg/auth"
	"github.com/paclead/splitsettle/pkg/config"
	pkgerrors "github.com/paclead/splitsettle/pkg/errors"
	"github.com/paclead/splitsettle/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
// Tokens are minted by the hosted auth backend; nothing here issues them.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.RegisteredClaims.Subject)
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			if claims.OrganizationID != nil {
				ctx = context.WithValue(ctx, ctxOrganizationID, claims.OrganizationID.String())
			}

			if logg != nil {
				fields := map[string]any{
					"user_id":    claims.RegisteredClaims.Subject,
					"actor_role": string(claims.Role),
				}
				if claims.OrganizationID != nil {
					fields["organization_id"] = claims.OrganizationID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
