// Package bootstrap opens the configured backing services for the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/agricontract-backend/internal/storage"
	"github.com/angelmondragon/agricontract-backend/pkg/config"
	"github.com/angelmondragon/agricontract-backend/pkg/db"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/angelmondragon/agricontract-backend/pkg/migrate"
	"github.com/angelmondragon/agricontract-backend/pkg/redis"
)

// Backend holds the repository plus whichever clients were opened to serve it.
type Backend struct {
	Repo  *storage.Repository
	DB    *db.Client
	Redis *redis.Client

	closers []func() error
}

// Open connects the store selected by cfg.Store.Backend. Redis is also opened
// when configured for another backend, since sessions and rate limits use it.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (b *Backend, err error) {
	b = &Backend{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, b.Close())
			b = nil
		}
	}()

	if cfg.Store.Backend == config.StoreBackendRedis || cfg.Redis.Configured() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return b, fmt.Errorf("redis: %w", err)
		}
		b.Redis = client
		b.closers = append(b.closers, client.Close)
	}

	var kv storage.KV
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		kv = storage.NewMemoryKV()
	case config.StoreBackendRedis:
		kv = storage.NewRedisKV(b.Redis)
	case config.StoreBackendSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return b, fmt.Errorf("database: %w", err)
		}
		b.DB = client
		b.closers = append(b.closers, client.Close)
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return b, fmt.Errorf("migrations: %w", err)
		}
		kv = storage.NewSQLKV(client)
	default:
		return b, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}

	var opts []storage.Option
	if !cfg.Store.SeedContracts {
		opts = append(opts, storage.WithoutSeed())
	}
	b.Repo = storage.NewRepository(kv, cfg.Store.Namespace, opts...)

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"store_backend":   cfg.Store.Backend,
			"store_namespace": b.Repo.Namespace(),
		}), "store ready")
	}
	return b, nil
}

// Close releases every opened client in reverse order.
func (b *Backend) Close() error {
	if b == nil {
		return nil
	}
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i]())
	}
	b.closers = nil
	return err
}
