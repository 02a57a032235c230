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
	Stripe       StripeConfig
	CORS         CORSConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"FICHES_APP_ENV" required:"true"`
	Port         string `envconfig:"FICHES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FICHES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FICHES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FICHES_DB_DSN"`
	Driver string `envconfig:"FICHES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FICHES_DB_HOST"`
	LegacyPort     int    `envconfig:"FICHES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FICHES_DB_USER"`
	LegacyPassword string `envconfig:"FICHES_DB_PASSWORD"`
	LegacyName     string `envconfig:"FICHES_DB_NAME"`
	LegacySSLMode  string `envconfig:"FICHES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FICHES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FICHES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FICHES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FICHES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FICHES_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FICHES_REDIS_ADDR"`
	Password     string        `envconfig:"FICHES_REDIS_PASSWORD"`
	DB           int           `envconfig:"FICHES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FICHES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FICHES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FICHES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FICHES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FICHES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"FICHES_STRIPE_API_KEY"`
	Secret string `envconfig:"FICHES_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"FICHES_STRIPE_ENV" default:"test"`

	Currency           string `envconfig:"FICHES_STRIPE_CURRENCY" default:"eur"`
	UnitAmountCents    int64  `envconfig:"FICHES_STRIPE_UNIT_AMOUNT_CENTS" default:"1490"`
	ProductName        string `envconfig:"FICHES_STRIPE_PRODUCT_NAME" default:"Abonnement Premium"`
	ProductDescription string `envconfig:"FICHES_STRIPE_PRODUCT_DESCRIPTION" default:"Accès complet à tous les services"`
	SuccessURL         string `envconfig:"FICHES_STRIPE_SUCCESS_URL" required:"true"`
	CancelURL          string `envconfig:"FICHES_STRIPE_CANCEL_URL" required:"true"`
	PortalReturnURL    string `envconfig:"FICHES_STRIPE_PORTAL_RETURN_URL" required:"true"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FICHES_CORS_ALLOWED_ORIGINS" default:"*"`
	MaxAgeSeconds  int      `envconfig:"FICHES_CORS_MAX_AGE_SECONDS" default:"86400"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"FICHES_WEBHOOK_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FICHES_AUTO_MIGRATE" default:"false"`
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
