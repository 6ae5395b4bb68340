package config

const EnvPrefix = "AGRI"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
	StoreBackendSQL    = "sql"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	PasswordSchemeArgon2id = "argon2id"
	PasswordSchemeLegacy   = "legacy"
)

const (
	EnvAppEnv       = "AGRI_APP_ENV"
	EnvPort         = "AGRI_APP_PORT"
	EnvLogLevel     = "AGRI_LOG_LEVEL"
	EnvLogWarnStack = "AGRI_LOG_WARN_STACK"

	EnvStoreBackend   = "AGRI_STORE_BACKEND"
	EnvStoreNamespace = "AGRI_STORE_NAMESPACE"
	EnvStoreSeed      = "AGRI_STORE_SEED_CONTRACTS"

	EnvDBDSN      = "AGRI_DB_DSN"
	EnvDBDriver   = "AGRI_DB_DRIVER"
	EnvDBHost     = "AGRI_DB_HOST"
	EnvDBPort     = "AGRI_DB_PORT"
	EnvDBUser     = "AGRI_DB_USER"
	EnvDBPassword = "AGRI_DB_PASSWORD"
	EnvDBName     = "AGRI_DB_NAME"
	EnvDBSSLMode  = "AGRI_DB_SSLMODE"

	EnvRedisURL  = "AGRI_REDIS_URL"
	EnvRedisAddr = "AGRI_REDIS_ADDR"

	EnvJWTSecret  = "AGRI_JWT_SECRET"
	EnvJWTIssuer  = "AGRI_JWT_ISSUER"
	EnvJWTExpMins = "AGRI_JWT_EXPIRATION_MINUTES"

	EnvPasswordScheme = "AGRI_PASSWORD_SCHEME"

	EnvAPIRateLimitRPS   = "AGRI_API_RATE_LIMIT_RPS"
	EnvAPIRateLimitBurst = "AGRI_API_RATE_LIMIT_BURST"

	EnvCORSAllowedOrigins = "AGRI_CORS_ALLOWED_ORIGINS"

	EnvAutoMigrate = "AGRI_AUTO_MIGRATE"

	EnvGCPProjectID      = "AGRI_GCP_PROJECT_ID"
	EnvPubSubEnabled     = "AGRI_PUBSUB_ENABLED"
	EnvPubSubEventsTopic = "AGRI_PUBSUB_EVENTS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
