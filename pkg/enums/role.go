package enums

import "fmt"

// Role is the account type chosen at registration.
type Role string

const (
	RoleFarmer  Role = "farmer"
	RoleFactory Role = "factory"
)

var validRoles = []Role{
	RoleFarmer,
	RoleFactory,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// DisplayName is the label shown next to a user's name.
func (r Role) DisplayName() string {
	switch r {
	case RoleFarmer:
		return "Farmer"
	case RoleFactory:
		return "Factory Admin"
	default:
		return string(r)
	}
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
