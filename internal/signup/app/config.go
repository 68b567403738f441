package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env                  string        `env:"ENV" env-default:"dev" env-description:"Environment (dev, staging, prod)"`
	LogLevel             string        `env:"LOG_LEVEL" env-default:"info" env-description:"Log level (debug, info, warn, error)"`
	LogFormat            string        `env:"LOG_FORMAT" env-default:"json" env-description:"Log format (json, text)"`
	Port                 int           `env:"PORT" env-default:"8080" env-description:"HTTP server port"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" env-default:"10s" env-description:"Graceful shutdown timeout"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" env-default:"1h" env-description:"Housekeeping interval, 0 disables"`
	SagaStaleAfter       time.Duration `env:"SAGA_STALE_AFTER" env-default:"15m" env-description:"Age after which an unfinished signup is reconciled"`

	StoreDriver  string `env:"STORE_DRIVER" env-default:"sqlite" env-description:"Store driver (sqlite, postgres)"`
	DatabaseFile string `env:"DATABASE_FILE" env-default:"signup.db" env-description:"Path to the SQLite database file"`
	DatabaseURL  string `env:"DATABASE_URL" env-description:"Postgres connection URL (postgres driver)"`

	IdentityProvider string `env:"IDENTITY_PROVIDER" env-default:"local" env-description:"Identity provider (local, gotrue)"`
	GoTrueURL        string `env:"GOTRUE_URL" env-description:"GoTrue base URL (gotrue provider)"`
	GoTrueServiceKey string `env:"GOTRUE_SERVICE_KEY" env-description:"GoTrue service role key (gotrue provider)"`
	GoTrueJWTSecret  string `env:"GOTRUE_JWT_SECRET" env-description:"HS256 secret GoTrue signs sessions with (gotrue provider)"`
	Issuer           string `env:"AUTH_ISSUER" env-default:"hubsignup" env-description:"Issuer claim of session tokens"`
	PepperFile       string `env:"PEPPER_FILE" env-default:"pepper" env-description:"Path to the password pepper file"`
	BootstrapToken   string `env:"BOOTSTRAP_TOKEN" env-description:"Token required to bootstrap; empty disables bootstrap"`

	InviteTTL time.Duration `env:"INVITE_TTL" env-default:"336h" env-description:"Default invite lifetime"`
	AppURL    string        `env:"APP_URL" env-default:"http://localhost:3000" env-description:"Frontend base URL used in notification links"`

	Notifier          string `env:"NOTIFIER" env-default:"log" env-description:"Notification dispatcher (log, smtp, nats)"`
	SMTPHost          string `env:"SMTP_HOST" env-default:"localhost"`
	SMTPPort          int    `env:"SMTP_PORT" env-default:"1025"`
	SMTPUsername      string `env:"SMTP_USERNAME"`
	SMTPPassword      string `env:"SMTP_PASSWORD"`
	SMTPFrom          string `env:"SMTP_FROM" env-default:"noreply@example.com"`
	SMTPTLS           bool   `env:"SMTP_TLS" env-default:"false"`
	NATSURL           string `env:"NATS_URL" env-default:"nats://127.0.0.1:4222"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" env-default:"hubsignup.notify"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.IdentityProvider {
	case "local":
	case "gotrue":
		if c.GoTrueURL == "" || c.GoTrueServiceKey == "" {
			errs = append(errs, errors.New("GOTRUE_URL and GOTRUE_SERVICE_KEY are required for the gotrue provider"))
		}
		if c.GoTrueJWTSecret == "" {
			errs = append(errs, errors.New("GOTRUE_JWT_SECRET is required for the gotrue provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider))
	}

	switch c.Notifier {
	case "log", "smtp", "nats":
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFIER %q", c.Notifier))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.InviteTTL <= 0 {
		errs = append(errs, errors.New("INVITE_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// Usage describes every supported environment variable.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return text
}
