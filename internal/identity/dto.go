package identity

import (
	"strings"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,agri_email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=farmer factory"`
}

func (r RegisterRequest) normalized() RegisterRequest {
	return RegisterRequest{
		Name:     strings.TrimSpace(r.Name),
		Email:    normalizeEmail(r.Email),
		Password: r.Password,
		Role:     strings.TrimSpace(r.Role),
	}
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserDTO is the public view of a user; the digest never leaves the service.
type UserDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	RoleLabel string     `json:"roleLabel"`
	CreatedAt string     `json:"createdAt"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		RoleLabel: u.Role.DisplayName(),
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
