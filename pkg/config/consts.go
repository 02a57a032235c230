package config

const (
	EnvPrefix = "FICHES"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "FICHES_APP_ENV"
	EnvPort   = "FICHES_APP_PORT"

	EnvDBDSN  = "FICHES_DB_DSN"
	EnvDBHost = "FICHES_DB_HOST"
	EnvDBUser = "FICHES_DB_USER"
	EnvDBName = "FICHES_DB_NAME"

	EnvRedisURL = "FICHES_REDIS_URL"

	EnvStripeAPIKey        = "FICHES_STRIPE_API_KEY"
	EnvStripeWebhookSecret = "FICHES_STRIPE_WEBHOOK_SECRET"
	EnvStripeSuccessURL    = "FICHES_STRIPE_SUCCESS_URL"
	EnvStripeCancelURL     = "FICHES_STRIPE_CANCEL_URL"
	EnvStripePortalReturn  = "FICHES_STRIPE_PORTAL_RETURN_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
