package models

import (
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

// User is a registered account. Email is stored lower-cased and trimmed.
type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordDigest string     `json:"passwordDigest"`
	Role           enums.Role `json:"role"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Session returns the non-secret projection held as the current session.
func (u User) Session() Session {
	return Session{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
