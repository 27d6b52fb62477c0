package config

// EnvPrefix namespaces envconfig lookups. Fields also resolve by their full
// tag name, which is what deployments set.
const EnvPrefix = "SPLITSETTLE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "SPLITSETTLE_APP_ENV"
	EnvPort      = "SPLITSETTLE_APP_PORT"
	EnvDBDSN     = "SPLITSETTLE_DB_DSN"
	EnvDBHost    = "SPLITSETTLE_DB_HOST"
	EnvDBUser    = "SPLITSETTLE_DB_USER"
	EnvDBName    = "SPLITSETTLE_DB_NAME"
	EnvRedisURL  = "SPLITSETTLE_REDIS_URL"
	EnvJWTSecret = "SPLITSETTLE_JWT_SECRET"

	EnvStripeWebhookSecret = "SPLITSETTLE_STRIPE_WEBHOOK_SECRET"
	EnvSettlementPixDelay  = "SPLITSETTLE_SETTLEMENT_PIX_DELAY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
