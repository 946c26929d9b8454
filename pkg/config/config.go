package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cron     CronConfig
	Push     PushConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Outbox   OutboxConfig
	Matching MatchingConfig
	Features FeatureFlagsConfig
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
	Env          string `envconfig:"CARESWAP_APP_ENV" required:"true"`
	Port         string `envconfig:"CARESWAP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARESWAP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARESWAP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CARESWAP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARESWAP_DB_DSN"`
	Driver string `envconfig:"CARESWAP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARESWAP_DB_HOST"`
	LegacyPort     int    `envconfig:"CARESWAP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARESWAP_DB_USER"`
	LegacyPassword string `envconfig:"CARESWAP_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARESWAP_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARESWAP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARESWAP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARESWAP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARESWAP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARESWAP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARESWAP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARESWAP_REDIS_ADDR"`
	Password     string        `envconfig:"CARESWAP_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARESWAP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARESWAP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARESWAP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARESWAP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARESWAP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARESWAP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"CARESWAP_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"CARESWAP_JWT_ISSUER" required:"true"`
}

type CronConfig struct {
	Interval       time.Duration `envconfig:"CARESWAP_CRON_INTERVAL" default:"5m"`
	SharedSecret   string        `envconfig:"CARESWAP_CRON_SHARED_SECRET" required:"true"`
	ReminderLead   time.Duration `envconfig:"CARESWAP_CRON_REMINDER_LEAD" default:"1h"`
	ReminderWindow time.Duration `envconfig:"CARESWAP_CRON_REMINDER_WINDOW" default:"5m"`
}

type PushConfig struct {
	GatewayURL string        `envconfig:"CARESWAP_PUSH_GATEWAY_URL"`
	APIKey     string        `envconfig:"CARESWAP_PUSH_API_KEY"`
	Timeout    time.Duration `envconfig:"CARESWAP_PUSH_TIMEOUT" default:"10s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CARESWAP_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"CARESWAP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CARESWAP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"CARESWAP_PUBSUB_DOMAIN_TOPIC" default:"cs-domain-events"`
	DomainSubscription string `envconfig:"CARESWAP_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CARESWAP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CARESWAP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CARESWAP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type MatchingConfig struct {
	ScorerURL string        `envconfig:"CARESWAP_MATCHING_SCORER_URL"`
	Timeout   time.Duration `envconfig:"CARESWAP_MATCHING_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARESWAP_AUTO_MIGRATE" default:"false"`
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
