package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name   string
		sess   *models.Session
		status int
	}{
		{name: "no session", status: http.StatusUnauthorized},
		{name: "wrong role", sess: &models.Session{ID: "u1", Role: enums.RoleFarmer}, status: http.StatusUnauthorized},
		{name: "matching role", sess: &models.Session{ID: "u2", Role: enums.RoleFactory}, status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(enums.RoleFactory, nil)(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.sess != nil {
				req = req.WithContext(WithSession(req.Context(), *tc.sess))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, rec.Code)
			}
			if tc.status == http.StatusOK {
				return
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload.Error.Code != string(pkgerrors.CodeUnauthorized) {
				t.Fatalf("unexpected code %s", payload.Error.Code)
			}
		})
	}
}
