package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/auth"
	"github.com/angelmondragon/agricontract-backend/pkg/auth/session"
	"github.com/angelmondragon/agricontract-backend/pkg/config"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsSessionFromToken(t *testing.T) {
	sess := models.Session{ID: "user_1", Name: "Ravi Kumar", Email: "ravi@example.com", Role: enums.RoleFarmer}
	token, accessID := mintTestToken(t, sess)

	var captured *models.Session
	var capturedAccess string
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionFromContext(r.Context())
		capturedAccess = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured == nil || *captured != sess {
		t.Fatalf("unexpected session %+v", captured)
	}
	if capturedAccess != accessID {
		t.Fatalf("expected access id %s got %s", accessID, capturedAccess)
	}
}

func TestAuthAcceptsTokenHeader(t *testing.T) {
	token, _ := mintTestToken(t, models.Session{ID: "user_2", Name: "Mill", Email: "mill@example.com", Role: enums.RoleFactory})

	var role string
	handler := Auth(testJWT, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TokenHeader, token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if role != string(enums.RoleFactory) {
		t.Fatalf("expected factory role got %q", role)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token, _ := mintTestToken(t, models.Session{ID: "user_1", Role: enums.RoleFarmer})
	handler := Auth(testJWT, stubSessionVerifier{ok: false}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthReportsVerifierFailure(t *testing.T) {
	token, _ := mintTestToken(t, models.Session{ID: "user_1", Role: enums.RoleFarmer})
	handler := Auth(testJWT, stubSessionVerifier{err: errors.New("redis down")}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func mintTestToken(t *testing.T, sess models.Session) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{Session: sess, JTI: accessID})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, accessID
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, s.err
}
