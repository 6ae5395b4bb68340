package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/agricontract-backend/api/controllers"
	"github.com/angelmondragon/agricontract-backend/api/middleware"
	"github.com/angelmondragon/agricontract-backend/pkg/auth/session"
	"github.com/angelmondragon/agricontract-backend/pkg/config"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/angelmondragon/agricontract-backend/pkg/metrics"
)

// SessionManager tracks live access tokens. Leave it nil for stateless tokens.
type SessionManager interface {
	session.AccessSessionChecker
	controllers.SessionTracker
}

// Deps collects what the router wires into controllers. Optional fields may be nil.
type Deps struct {
	Identity    controllers.IdentityService
	Marketplace controllers.Marketplace
	Sessions    SessionManager
	// RateCounter backs the auth throttles; the redis client in production.
	RateCounter middleware.WindowCounter
	Pingers     map[string]controllers.Pinger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	apiLimiter := middleware.NewKeyLimiter(cfg.APIRateLimit.RPS, cfg.APIRateLimit.Burst, cfg.APIRateLimit.IdleTTL)

	var verifier session.AccessSessionChecker
	var tracker controllers.SessionTracker
	if deps.Sessions != nil {
		verifier = deps.Sessions
		tracker = deps.Sessions
	}
	authn := middleware.Auth(cfg.JWT, verifier, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(apiLimiter, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.RateCounter, logg)).Post("/register", controllers.AuthRegister(deps.Identity, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateCounter, logg)).Post("/login", controllers.AuthLogin(deps.Identity, tracker, cfg.JWT, logg))
			r.With(authn).Post("/logout", controllers.AuthLogout(tracker, logg))
			r.With(authn).Get("/me", controllers.AuthMe(deps.Identity, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", controllers.ContractList(deps.Marketplace, logg))
				r.Get("/{contractId}", controllers.ContractDetail(deps.Marketplace, logg))
			})

			r.Route("/farmer", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleFarmer, logg))
				r.Get("/dashboard", controllers.FarmerDashboard(deps.Marketplace, logg))
				r.Get("/contracts/available", controllers.FarmerAvailableContracts(deps.Marketplace, logg))
				r.Get("/applications", controllers.FarmerApplications(deps.Marketplace, logg))
				r.Post("/contracts/{contractId}/apply", controllers.FarmerApply(deps.Marketplace, logg))
			})

			r.Route("/factory", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleFactory, logg))
				r.Get("/dashboard", controllers.FactoryDashboard(deps.Marketplace, logg))
				r.Get("/contracts", controllers.FactoryContracts(deps.Marketplace, logg))
				r.Post("/contracts", controllers.FactoryCreateContract(deps.Marketplace, logg))
				r.Get("/applications", controllers.FactoryApplications(deps.Marketplace, logg))
				r.Post("/applications/{applicationId}/approve", controllers.FactoryApprove(deps.Marketplace, logg))
				r.Post("/applications/{applicationId}/reject", controllers.FactoryReject(deps.Marketplace, logg))
			})
		})
	})

	return r
}
