package middleware

import (
	"net/http"

	"github.com/angelmondragon/agricontract-backend/api/responses"
	"github.com/angelmondragon/agricontract-backend/internal/identity"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

// RequireRole rejects requests whose session does not carry role.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := identity.CheckRole(SessionFromContext(r.Context()), role); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
