package storage

import (
	"context"
	"strings"
)

// Collection names persisted per namespace.
const (
	CollectionUsers          = "users"
	CollectionContracts      = "contracts"
	CollectionApplications   = "applications"
	CollectionCurrentSession = "current_session"
)

const (
	keyPrefix        = "agricontract"
	DefaultNamespace = "default"
)

// KV is a flat string store. Commit applies every set and delete as one unit.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Commit(ctx context.Context, sets map[string]string, dels []string) error
}

// Key returns the storage key of a collection inside a namespace.
func Key(namespace, collection string) string {
	return strings.Join([]string{keyPrefix, NormalizeNamespace(namespace), collection}, ":")
}

// NormalizeNamespace trims namespace and falls back to DefaultNamespace.
func NormalizeNamespace(namespace string) string {
	ns := strings.TrimSpace(namespace)
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}
