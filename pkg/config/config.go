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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Webhook      WebhookConfig
	Settlement   SettlementConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
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
	Env          string   `envconfig:"SPLITSETTLE_APP_ENV" required:"true"`
	Port         string   `envconfig:"SPLITSETTLE_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"SPLITSETTLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SPLITSETTLE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"SPLITSETTLE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SPLITSETTLE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SPLITSETTLE_DB_DSN"`
	Driver string `envconfig:"SPLITSETTLE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SPLITSETTLE_DB_HOST"`
	LegacyPort     int    `envconfig:"SPLITSETTLE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SPLITSETTLE_DB_USER"`
	LegacyPassword string `envconfig:"SPLITSETTLE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SPLITSETTLE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SPLITSETTLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPLITSETTLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPLITSETTLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPLITSETTLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPLITSETTLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPLITSETTLE_REDIS_URL"`
	Address      string        `envconfig:"SPLITSETTLE_REDIS_ADDR"`
	Password     string        `envconfig:"SPLITSETTLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPLITSETTLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPLITSETTLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPLITSETTLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPLITSETTLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPLITSETTLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPLITSETTLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig holds the verification settings for tokens minted by the hosted
// backend. The service never issues tokens itself.
type JWTConfig struct {
	Secret   string        `envconfig:"SPLITSETTLE_JWT_SECRET" required:"true"`
	Issuer   string        `envconfig:"SPLITSETTLE_JWT_ISSUER"`
	Audience string        `envconfig:"SPLITSETTLE_JWT_AUDIENCE" default:"authenticated"`
	Leeway   time.Duration `envconfig:"SPLITSETTLE_JWT_LEEWAY" default:"30s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SPLITSETTLE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SPLITSETTLE_AUTO_MIGRATE" default:"false"`
}

// WebhookConfig carries the per-gateway verification secrets. An empty secret
// disables verification for that gateway.
type WebhookConfig struct {
	StripeSigningSecret   string        `envconfig:"SPLITSETTLE_STRIPE_WEBHOOK_SECRET"`
	SquareSignatureKey    string        `envconfig:"SPLITSETTLE_SQUARE_SIGNATURE_KEY"`
	SquareNotificationURL string        `envconfig:"SPLITSETTLE_SQUARE_NOTIFICATION_URL"`
	AsaasAccessToken      string        `envconfig:"SPLITSETTLE_ASAAS_WEBHOOK_TOKEN"`
	PagarmeSecret         string        `envconfig:"SPLITSETTLE_PAGARME_WEBHOOK_SECRET"`
	CompletedTTL          time.Duration `envconfig:"SPLITSETTLE_WEBHOOK_COMPLETED_TTL" default:"168h"`
	MaxBodyBytes          int64         `envconfig:"SPLITSETTLE_WEBHOOK_MAX_BODY_BYTES" default:"1048576"`
}

// SettlementConfig holds the release delay applied to deferred ledger
// credits, keyed by payment method.
type SettlementConfig struct {
	PixDelay        time.Duration `envconfig:"SPLITSETTLE_SETTLEMENT_PIX_DELAY" default:"24h"`
	BoletoDelay     time.Duration `envconfig:"SPLITSETTLE_SETTLEMENT_BOLETO_DELAY" default:"48h"`
	CreditCardDelay time.Duration `envconfig:"SPLITSETTLE_SETTLEMENT_CREDIT_CARD_DELAY" default:"720h"`
	DefaultDelay    time.Duration `envconfig:"SPLITSETTLE_SETTLEMENT_DEFAULT_DELAY" default:"720h"`
	PlatformPartyID string        `envconfig:"SPLITSETTLE_PLATFORM_PARTY_ID" default:"00000000-0000-0000-0000-000000000000"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SPLITSETTLE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SPLITSETTLE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SPLITSETTLE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SettlementTopic string `envconfig:"SPLITSETTLE_PUBSUB_SETTLEMENT_TOPIC" default:"split-settlement-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SPLITSETTLE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SPLITSETTLE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SPLITSETTLE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"SPLITSETTLE_CRON_INTERVAL" default:"5m"`
	LockTTL          time.Duration `envconfig:"SPLITSETTLE_CRON_LOCK_TTL" default:"4m"`
	ReleaseBatchSize int           `envconfig:"SPLITSETTLE_CRON_RELEASE_BATCH_SIZE" default:"500"`
	OutboxRetention  time.Duration `envconfig:"SPLITSETTLE_CRON_OUTBOX_RETENTION" default:"720h"`
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
