package config

const (
	EnvPrefix = "BASKET"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "BASKET_APP_ENV"
	EnvPort     = "BASKET_APP_PORT"
	EnvLogLevel = "BASKET_LOG_LEVEL"

	EnvDBDSN    = "BASKET_DB_DSN"
	EnvDBDriver = "BASKET_DB_DRIVER"
	EnvDBHost   = "BASKET_DB_HOST"
	EnvDBUser   = "BASKET_DB_USER"
	EnvDBName   = "BASKET_DB_NAME"

	EnvRedisURL = "BASKET_REDIS_URL"

	EnvExportRateLimit  = "BASKET_RATE_LIMIT_EXPORT_LIMIT"
	EnvExportRateWindow = "BASKET_RATE_LIMIT_EXPORT_WINDOW"
	EnvTrustedProxies   = "BASKET_RATE_LIMIT_TRUSTED_PROXIES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
