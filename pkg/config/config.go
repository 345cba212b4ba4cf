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
	JWT          JWTConfig
	PayPal       PayPalConfig
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
	Env          string `envconfig:"CLUBHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"CLUBHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CLUBHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLUBHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CLUBHUB_DB_DSN"`
	Driver string `envconfig:"CLUBHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CLUBHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"CLUBHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CLUBHUB_DB_USER"`
	LegacyPassword string `envconfig:"CLUBHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"CLUBHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"CLUBHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLUBHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLUBHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLUBHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLUBHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLUBHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CLUBHUB_REDIS_ADDR"`
	Password     string        `envconfig:"CLUBHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLUBHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLUBHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLUBHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLUBHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLUBHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLUBHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CLUBHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CLUBHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CLUBHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PayPalConfig carries the single-tenant fallback credentials plus client tuning.
// Per-club credentials live on the club record; these values only apply when a
// webhook cannot be matched to a configured club.
type PayPalConfig struct {
	FallbackClientID     string        `envconfig:"CLUBHUB_PAYPAL_FALLBACK_CLIENT_ID"`
	FallbackClientSecret string        `envconfig:"CLUBHUB_PAYPAL_FALLBACK_CLIENT_SECRET"`
	FallbackWebhookID    string        `envconfig:"CLUBHUB_PAYPAL_FALLBACK_WEBHOOK_ID"`
	FallbackIsProduction bool          `envconfig:"CLUBHUB_PAYPAL_FALLBACK_IS_PRODUCTION" default:"false"`
	HTTPTimeout          time.Duration `envconfig:"CLUBHUB_PAYPAL_HTTP_TIMEOUT" default:"10s"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"CLUBHUB_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CLUBHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CLUBHUB_AUTO_MIGRATE" default:"false"`
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
