package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	EzManage     EzManageConfig
	Nutshell     NutshellConfig
	Webhook      WebhookConfig
	Tenants      TenantsConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CATERSYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"CATERSYNC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CATERSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CATERSYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CATERSYNC_DB_DSN"`
	Driver string `envconfig:"CATERSYNC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATERSYNC_DB_HOST"`
	LegacyPort     int    `envconfig:"CATERSYNC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATERSYNC_DB_USER"`
	LegacyPassword string `envconfig:"CATERSYNC_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATERSYNC_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATERSYNC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATERSYNC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATERSYNC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATERSYNC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATERSYNC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CATERSYNC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CATERSYNC_REDIS_ADDR"`
	Password     string        `envconfig:"CATERSYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATERSYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATERSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATERSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATERSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATERSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATERSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// EzManageConfig carries the upstream order API settings. APIKeys maps a tenant
// ref to its EzManage credential (e.g. "H4H:key1,ACME:key2").
type EzManageConfig struct {
	GraphQLURL string            `envconfig:"CATERSYNC_EZMANAGE_GRAPHQL_URL" default:"https://api.ezcater.com/graphql"`
	APIKeys    map[string]string `envconfig:"CATERSYNC_EZMANAGE_API_KEYS"`
	Timeout    time.Duration     `envconfig:"CATERSYNC_EZMANAGE_TIMEOUT" default:"30s"`
}

// NutshellConfig carries the CRM API settings. Usernames and APIKeys are both
// keyed by tenant ref.
type NutshellConfig struct {
	BaseURL   string            `envconfig:"CATERSYNC_NUTSHELL_BASE_URL" default:"https://app.nutshell.com/api/v1/json"`
	Usernames map[string]string `envconfig:"CATERSYNC_NUTSHELL_USERNAMES"`
	APIKeys   map[string]string `envconfig:"CATERSYNC_NUTSHELL_API_KEYS"`
	Timeout   time.Duration     `envconfig:"CATERSYNC_NUTSHELL_TIMEOUT" default:"30s"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"CATERSYNC_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
}

// TenantsConfig points at the tenant mapping-profile document. When empty the
// profiles compiled into the binary are used.
type TenantsConfig struct {
	ProfilesPath string `envconfig:"CATERSYNC_TENANT_PROFILES_PATH"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CATERSYNC_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CATERSYNC_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CATERSYNC_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CATERSYNC_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CATERSYNC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"CATERSYNC_PUBSUB_ORDERS_TOPIC" default:"cs-order-events"`
	OrdersSubscription string `envconfig:"CATERSYNC_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CATERSYNC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CATERSYNC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CATERSYNC_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
