package config

const (
	// EnvPrefix is passed to envconfig; explicit envconfig tags carry the
	// full variable names so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CATERSYNC_DB_DSN"
	EnvDBHost = "CATERSYNC_DB_HOST"
	EnvDBUser = "CATERSYNC_DB_USER"
	EnvDBName = "CATERSYNC_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

const (
	EnvAppEnv   = "CATERSYNC_APP_ENV"
	EnvPort     = "CATERSYNC_APP_PORT"
	EnvRedisURL = "CATERSYNC_REDIS_URL"
)
