package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/agricontract-backend/api/middleware"
	"github.com/angelmondragon/agricontract-backend/api/responses"
	"github.com/angelmondragon/agricontract-backend/api/validators"
	"github.com/angelmondragon/agricontract-backend/internal/identity"
	pkgAuth "github.com/angelmondragon/agricontract-backend/pkg/auth"
	"github.com/angelmondragon/agricontract-backend/pkg/config"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

// IdentityService is the part of identity.Service the HTTP layer needs.
type IdentityService interface {
	Register(ctx context.Context, req identity.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, req identity.LoginRequest) (*models.Session, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// SessionTracker records live access ids so tokens can be revoked before expiry.
type SessionTracker interface {
	Start(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

type LoginResponse struct {
	AccessToken string         `json:"accessToken"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	Session     models.Session `json:"session"`
}

// AuthRegister creates an account. It does not log the user in.
func AuthRegister(svc IdentityService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body identity.RegisterRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, identity.FromModel(user))
	}
}

// AuthLogin verifies credentials and mints an access token. When tracker is
// set the token's jti is recorded so logout can revoke it.
func AuthLogin(svc IdentityService, tracker SessionTracker, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body identity.LoginRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.Authenticate(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var accessID string
		if tracker != nil {
			accessID, err = tracker.Start(r.Context(), sess.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start session"))
				return
			}
		}

		now := time.Now()
		token, err := pkgAuth.MintAccessToken(cfg, now, pkgAuth.AccessTokenPayload{Session: *sess, JTI: accessID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token"))
			return
		}

		w.Header().Set(middleware.TokenHeader, token)
		responses.WriteSuccess(w, LoginResponse{
			AccessToken: token,
			ExpiresAt:   now.Add(cfg.TTL()).UTC(),
			Session:     *sess,
		})
	}
}

// AuthLogout revokes the presented token. Without a tracker tokens are
// stateless and logout only acknowledges.
func AuthLogout(tracker SessionTracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tracker != nil {
			if accessID := middleware.AccessIDFromContext(r.Context()); accessID != "" {
				if err := tracker.Revoke(r.Context(), accessID); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
					return
				}
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

func AuthMe(svc IdentityService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.GetUser(r.Context(), sess.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, identity.FromModel(user))
	}
}

func actor(r *http.Request) (*models.Session, error) {
	return identity.CheckRole(middleware.SessionFromContext(r.Context()), "")
}
