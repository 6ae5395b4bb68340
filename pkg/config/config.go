package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	Store         StoreConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	APIRateLimit  APIRateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendRedis:
		if strings.TrimSpace(c.Redis.URL) == "" && strings.TrimSpace(c.Redis.Address) == "" {
			return fmt.Errorf("%s or %s is required for the redis store", EnvRedisURL, EnvRedisAddr)
		}
	case StoreBackendSQL:
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStoreBackend, c.Store.Backend)
	}

	switch c.Password.Scheme {
	case PasswordSchemeArgon2id, PasswordSchemeLegacy:
	default:
		return fmt.Errorf("unsupported %s %q", EnvPasswordScheme, c.Password.Scheme)
	}

	if c.PubSub.Enabled && strings.TrimSpace(c.GCP.ProjectID) == "" {
		return fmt.Errorf("%s is required when pubsub is enabled", EnvGCPProjectID)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"AGRI_APP_ENV" default:"dev"`
	Port         string `envconfig:"AGRI_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AGRI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGRI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AGRI_SERVICE_KIND" default:"api"`
}

// StoreConfig selects where the persisted collections live. Namespace scopes
// keys so several independent contexts can share one backend.
type StoreConfig struct {
	Backend       string `envconfig:"AGRI_STORE_BACKEND" default:"sql"`
	Namespace     string `envconfig:"AGRI_STORE_NAMESPACE" default:"default"`
	SeedContracts bool   `envconfig:"AGRI_STORE_SEED_CONTRACTS" default:"true"`
}

type DBConfig struct {
	DSN    string `envconfig:"AGRI_DB_DSN"`
	Driver string `envconfig:"AGRI_DB_DRIVER" default:"sqlite"`

	LegacyHost     string `envconfig:"AGRI_DB_HOST"`
	LegacyPort     int    `envconfig:"AGRI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGRI_DB_USER"`
	LegacyPassword string `envconfig:"AGRI_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGRI_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGRI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGRI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRI_REDIS_URL"`
	Address      string        `envconfig:"AGRI_REDIS_ADDR"`
	Password     string        `envconfig:"AGRI_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGRI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGRI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGRI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether any redis endpoint was supplied.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"AGRI_JWT_SECRET"`
	Issuer            string `envconfig:"AGRI_JWT_ISSUER" default:"agricontract"`
	ExpirationMinutes int    `envconfig:"AGRI_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// Validate is called by binaries that mint tokens.
func (j JWTConfig) Validate() error {
	if strings.TrimSpace(j.Secret) == "" {
		return fmt.Errorf("%s is required", EnvJWTSecret)
	}
	if j.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	return nil
}

type PasswordConfig struct {
	Scheme           string `envconfig:"AGRI_PASSWORD_SCHEME" default:"argon2id"`
	ArgonMemoryKB    int    `envconfig:"AGRI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"AGRI_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"AGRI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"AGRI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"AGRI_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AGRI_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AGRI_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AGRI_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AGRI_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AGRI_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AGRI_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// APIRateLimitConfig drives the in-process per-client token buckets.
type APIRateLimitConfig struct {
	RPS     float64       `envconfig:"AGRI_API_RATE_LIMIT_RPS" default:"20"`
	Burst   int           `envconfig:"AGRI_API_RATE_LIMIT_BURST" default:"40"`
	IdleTTL time.Duration `envconfig:"AGRI_API_RATE_LIMIT_IDLE_TTL" default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"AGRI_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AGRI_AUTO_MIGRATE" default:"true"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"AGRI_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	Enabled     bool   `envconfig:"AGRI_PUBSUB_ENABLED" default:"false"`
	EventsTopic string `envconfig:"AGRI_PUBSUB_EVENTS_TOPIC" default:"agricontract-domain-events"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:agricontract.db?_foreign_keys=on"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
