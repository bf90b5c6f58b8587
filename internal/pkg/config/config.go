package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	PendingStoreMongo = "mongo"
	PendingStoreRedis = "redis"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	SessionTTL     time.Duration `env:"SESSION_TTL,     default=72h"`
	OTPTTL         time.Duration `env:"OTP_TTL,         default=5m"`
	BcryptCost     int           `env:"BCRYPT_COST,     default=10"`
	PendingStore   string        `env:"PENDING_STORE,   default=mongo"`
	StreakTimezone string        `env:"STREAK_TIMEZONE, default=UTC"`
	TaskWorkers    int           `env:"TASK_WORKERS,    default=4"`
	CookieSecure   bool          `env:"COOKIE_SECURE,   default=true"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=develevate"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// SMTPConfig is optional. An empty Host selects the logging mailer.
type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST"`
	Port     int           `env:"SMTP_PORT,     default=587"`
	Username string        `env:"SMTP_USERNAME"`
	Password string        `env:"SMTP_PASSWORD"`
	From     string        `env:"SMTP_FROM,     default=DevElevate <no-reply@develevate.dev>"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT,  default=15s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from an arbitrary lookuper and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.PendingStore {
	case PendingStoreMongo, PendingStoreRedis:
	default:
		return fmt.Errorf("PENDING_STORE must be %q or %q, got %q", PendingStoreMongo, PendingStoreRedis, c.PendingStore)
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if _, err := c.StreakLocation(); err != nil {
		return err
	}
	return nil
}

// StreakLocation is the time zone that defines a calendar day for streaks.
func (c *Config) StreakLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.StreakTimezone)
	if err != nil {
		return nil, fmt.Errorf("STREAK_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
