package middleware

import (
	"context"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
)

type contextKey string

const (
	ctxSession  contextKey = "session"
	ctxAccessID contextKey = "access_id"
)

// SessionFromContext returns the actor attached by Auth, or nil.
func SessionFromContext(ctx context.Context) *models.Session {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(models.Session); ok {
		return &v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.ID
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if sess := SessionFromContext(ctx); sess != nil {
		return string(sess.Role)
	}
	return ""
}

// AccessIDFromContext returns the token jti, used by logout to revoke the session.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithSession injects the authenticated actor into the context.
func WithSession(ctx context.Context, sess models.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, sess)
}

func withAccessID(ctx context.Context, accessID string) context.Context {
	return context.WithValue(ctx, ctxAccessID, accessID)
}
