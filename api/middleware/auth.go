package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/agricontract-backend/api/responses"
	pkgAuth "github.com/angelmondragon/agricontract-backend/pkg/auth"
	"github.com/angelmondragon/agricontract-backend/pkg/auth/session"
	"github.com/angelmondragon/agricontract-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

// TokenHeader carries the access token on login responses and is accepted on requests.
const TokenHeader = "X-Agri-Token"

// Auth validates the access token and seeds the request context with the session it carries.
// A nil verifier means tokens are trusted until expiry.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := WithSession(r.Context(), claims.Session())
			ctx = withAccessID(ctx, claims.ID)

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return strings.TrimSpace(r.Header.Get(TokenHeader))
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
