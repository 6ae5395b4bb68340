package models

import "github.com/angelmondragon/agricontract-backend/pkg/enums"

// Session identifies the acting user.
type Session struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  enums.Role `json:"role"`
}
