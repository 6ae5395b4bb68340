package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/agricontract-backend/api/controllers"
	"github.com/angelmondragon/agricontract-backend/api/middleware"
	"github.com/angelmondragon/agricontract-backend/api/routes"
	"github.com/angelmondragon/agricontract-backend/internal/bootstrap"
	"github.com/angelmondragon/agricontract-backend/internal/identity"
	"github.com/angelmondragon/agricontract-backend/internal/marketplace"
	"github.com/angelmondragon/agricontract-backend/internal/notifications"
	"github.com/angelmondragon/agricontract-backend/pkg/auth/session"
	"github.com/angelmondragon/agricontract-backend/pkg/config"
	"github.com/angelmondragon/agricontract-backend/pkg/events"
	"github.com/angelmondragon/agricontract-backend/pkg/instance"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/angelmondragon/agricontract-backend/pkg/metrics"
	"github.com/angelmondragon/agricontract-backend/pkg/pubsub"
	"github.com/angelmondragon/agricontract-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	if err := cfg.JWT.Validate(); err != nil {
		logg.Error(context.Background(), "invalid jwt config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	backend, err := bootstrap.Open(ctx, cfg, logg)
	if err != nil {
		return err
	}
	var closers []func() error
	closers = append(closers, backend.Close)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cmdMetrics := metrics.NewCommandMetrics(registry)

	bus := events.NewBus(logg)
	wiring := notifications.Options{Logger: logg, Metrics: cmdMetrics}

	pingers := map[string]controllers.Pinger{}
	if backend.DB != nil {
		pingers["database"] = backend.DB
	}
	if backend.Redis != nil {
		pingers["redis"] = backend.Redis
	}

	if cfg.PubSub.Enabled {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		closers = append(closers, psClient.Close)
		publisher := psClient.EventsPublisher()
		forwarder, err := notifications.NewForwarder(publisher, logg)
		if err != nil {
			return err
		}
		closers = append(closers, func() error {
			publisher.Stop()
			return nil
		}, forwarder.Stop)
		wiring.Forwarder = forwarder
		pingers["pubsub"] = psClient
	}
	unsubscribe := notifications.Wire(bus, wiring)
	defer unsubscribe()

	hasher, err := security.NewHasher(cfg.Password)
	if err != nil {
		return err
	}
	idSvc, err := identity.NewService(identity.ServiceParams{
		Store:     backend.Repo,
		Hasher:    hasher,
		Publisher: bus,
		Metrics:   cmdMetrics,
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	engine, err := marketplace.NewEngine(marketplace.EngineParams{
		Store:     backend.Repo,
		Publisher: bus,
		Metrics:   cmdMetrics,
		Logger:    logg,
	})
	if err != nil {
		return err
	}

	deps := routes.Deps{
		Identity:    idSvc,
		Marketplace: engine,
		Pingers:     pingers,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Gatherer:    registry,
	}
	if backend.Redis != nil {
		manager, err := session.NewManager(backend.Redis, cfg.JWT)
		if err != nil {
			return err
		}
		deps.Sessions = manager
		deps.RateCounter = backend.Redis
	} else {
		deps.RateCounter = middleware.NewLocalWindowCounter()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
