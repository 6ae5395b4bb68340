package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/agricontract-backend/pkg/config"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
)

func TestOpenMemoryBackend(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: config.StoreBackendMemory, Namespace: "tab-1", SeedContracts: true}}

	b, err := Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.DB)
	assert.Nil(t, b.Redis)
	assert.Equal(t, "tab-1", b.Repo.Namespace())

	contracts, err := b.Repo.Contracts(context.Background())
	require.NoError(t, err)
	assert.Len(t, contracts, 4)
}

func TestOpenMemoryBackendWithoutSeed(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: config.StoreBackendMemory}}

	b, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)

	contracts, err := b.Repo.Contracts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, contracts)
	assert.Equal(t, "default", b.Repo.Namespace())
}

func TestOpenSQLiteBackendRunsMigrations(t *testing.T) {
	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		Store:        config.StoreConfig{Backend: config.StoreBackendSQL, Namespace: "sql", SeedContracts: true},
		DB:           config.DBConfig{Driver: config.DBDriverSQLite, DSN: "file:bootstrap_test?mode=memory&cache=shared", MaxOpenConns: 1, MaxIdleConns: 1},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}

	b, err := Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.DB)

	contracts, err := b.Repo.Contracts(context.Background())
	require.NoError(t, err)
	assert.Len(t, contracts, 4)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: "etcd"}}
	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
}
