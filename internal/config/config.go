package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"golang.org/x/crypto/bcrypt"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	TransportDirect   = "direct"
	TransportRabbitmq = "rabbitmq"

	EmailSenderSES = "ses"
	EmailSenderLog = "log"
)

type Config struct {
	IsTestMode bool   `env:"TEST_MODE" envDefault:"false"`
	Port       int    `env:"PORT" envDefault:"3000"`
	Secret     string `env:"SECRET,required"`
	StoreURL   string `env:"STORE_URL,required"`

	BcryptHasherCost        int      `env:"BCRYPT_COST" envDefault:"10"`
	ResetTokenValidHours    int      `env:"RESET_TOKEN_VALID_HOURS" envDefault:"1"`
	ResetURL                url.URL  `env:"RESET_URL" envDefault:"http://localhost:3000/reset-password"`
	ConcealAccountExistence bool     `env:"CONCEAL_ACCOUNT_EXISTENCE" envDefault:"false"`
	AllowedOrigins          []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	NotificationTransport string        `env:"NOTIFICATION_TRANSPORT" envDefault:"direct"`
	NotifierWorkers       int           `env:"NOTIFIER_WORKERS" envDefault:"4"`
	NotifierQueueSize     int           `env:"NOTIFIER_QUEUE_SIZE" envDefault:"100"`
	NotifierTimeout       time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"10s"`

	EmailSender  string `env:"EMAIL_SENDER" envDefault:"log"`
	EmailFrom    string `env:"EMAIL_FROM"`
	AwsRegion    string `env:"AWS_REGION"`
	AwsAccessKey string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey string `env:"AWS_SECRET_KEY"`

	RabbitmqURL   string `env:"RABBITMQ_URL"`
	RabbitmqQueue string `env:"RABBITMQ_QUEUE" envDefault:"password-reset-notifications"`
}

func Load() (*Config, error) {
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StoreKind derives the account store backend from the STORE_URL scheme.
func (c *Config) StoreKind() string {
	u, err := url.Parse(c.StoreURL)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return StorePostgres
	case "redis", "rediss":
		return StoreRedis
	}
	return ""
}

func (c *Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("SECRET must be set")
	}
	if c.StoreKind() == "" {
		return fmt.Errorf("STORE_URL must be a postgres:// or redis:// URL")
	}
	if c.BcryptHasherCost < bcrypt.MinCost || c.BcryptHasherCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.ResetTokenValidHours <= 0 {
		return fmt.Errorf("RESET_TOKEN_VALID_HOURS must be positive")
	}
	if c.ResetURL.Scheme == "" || c.ResetURL.Host == "" {
		return fmt.Errorf("RESET_URL must be an absolute URL")
	}
	if c.NotifierWorkers <= 0 || c.NotifierQueueSize < 0 || c.NotifierTimeout <= 0 {
		return fmt.Errorf("NOTIFIER_WORKERS, NOTIFIER_QUEUE_SIZE and NOTIFIER_TIMEOUT must be positive")
	}

	switch c.NotificationTransport {
	case TransportDirect:
	case TransportRabbitmq:
		if c.RabbitmqURL == "" || c.RabbitmqQueue == "" {
			return fmt.Errorf("RABBITMQ_URL and RABBITMQ_QUEUE must be set for rabbitmq transport")
		}
	default:
		return fmt.Errorf("unknown NOTIFICATION_TRANSPORT %q", c.NotificationTransport)
	}

	switch c.EmailSender {
	case EmailSenderLog:
	case EmailSenderSES:
		if c.EmailFrom == "" || c.AwsRegion == "" {
			return fmt.Errorf("EMAIL_FROM and AWS_REGION must be set for ses sender")
		}
	default:
		return fmt.Errorf("unknown EMAIL_SENDER %q", c.EmailSender)
	}
	return nil
}
