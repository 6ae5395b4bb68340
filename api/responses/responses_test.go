package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/angelmondragon/agricontract-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{pkgerrors.New(pkgerrors.CodeValidation, "bad input").WithDetails(map[string]string{"field": "demo"}), http.StatusBadRequest},
		{pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid email or password"), http.StatusUnauthorized},
		{pkgerrors.New(pkgerrors.CodeDuplicateApplication, "already applied"), http.StatusConflict},
		{pkgerrors.New(pkgerrors.CodeDuplicateEmail, "taken"), http.StatusConflict},
		{pkgerrors.New(pkgerrors.CodeForbidden, "not yours"), http.StatusForbidden},
		{pkgerrors.New(pkgerrors.CodeNotFound, "missing"), http.StatusNotFound},
		{pkgerrors.New(pkgerrors.CodeDependency, "redis down"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), logger.Nop(), w, tc.err)

		if got := w.Code; got != tc.status {
			t.Fatalf("%v: expected status %d but got %d", tc.err, tc.status, got)
		}
		var body types.ErrorEnvelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode error envelope: %v", err)
		}
		if body.Error.Code != string(pkgerrors.As(tc.err).Code()) {
			t.Fatalf("unexpected code %s", body.Error.Code)
		}
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message == "boom" {
		t.Fatalf("internal error text must not leak")
	}
	if body.Error.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
}
