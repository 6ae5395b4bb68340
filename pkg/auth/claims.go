package auth

import (
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Session models.Session
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients. It carries the
// full session projection so handlers never need a store lookup to know the actor.
type AccessTokenClaims struct {
	UserID string     `json:"user_id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session rebuilds the session projection carried by the token.
func (c AccessTokenClaims) Session() models.Session {
	return models.Session{ID: c.UserID, Name: c.Name, Email: c.Email, Role: c.Role}
}
