package instance

import (
	"os"

	"github.com/angelmondragon/agricontract-backend/pkg/env"
)

// GetID identifies this process in logs: AGRI_INSTANCE_ID, then the platform
// dyno name, then the hostname.
func GetID() string {
	if id, ok := env.First("AGRI_INSTANCE_ID", "DYNO"); ok {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
