// Package config loads the service configuration from environment variables.
// envconfig maps variables onto struct fields; an optional .env file is read first.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds ALL application settings.
type Config struct {
	// --- HTTP ---
	Port            int           `envconfig:"PORT" default:"3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	// Set only behind a reverse proxy that overwrites X-Real-IP / X-Forwarded-For.
	TrustProxy      bool          `envconfig:"TRUST_PROXY" default:"false"`

	// --- Session ---
	SessionCookie string `envconfig:"SESSION_COOKIE" default:"sid"`

	// --- Storage ---
	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/scratch.db"`

	// Only read when STORE_DRIVER=postgres.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"scratch"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"scratch_app"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Admin ---
	// Empty disables POST /api/admin/grant.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Economy ---
	ScratchCost      int64         `envconfig:"ECONOMY_SCRATCH_COST" default:"3"`
	DailyEnergy      int64         `envconfig:"ECONOMY_DAILY_ENERGY" default:"5"`
	AdEnergy         int64         `envconfig:"ECONOMY_AD_ENERGY" default:"10"`
	AdsPerDay        int           `envconfig:"ECONOMY_ADS_PER_DAY" default:"20"`
	BonusInterval    time.Duration `envconfig:"ECONOMY_BONUS_INTERVAL" default:"30m"`
	MysteryInterval  time.Duration `envconfig:"ECONOMY_MYSTERY_INTERVAL" default:"24h"`
	RewardTablesPath string        `envconfig:"REWARD_TABLES_PATH"`

	// --- Jobs ---
	AuditCron string `envconfig:"AUDIT_CRON" default:"0 * * * *"`
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in 1..65535, got %d", c.Port)
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DBPassword == "" {
			return errors.New("DB_PASSWORD is required for the postgres driver")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return errors.New("invalid DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SessionCookie == "" {
		return errors.New("SESSION_COOKIE must not be empty")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	if c.ScratchCost <= 0 {
		return errors.New("ECONOMY_SCRATCH_COST must be > 0")
	}
	if c.DailyEnergy < 0 || c.AdEnergy < 0 {
		return errors.New("economy grants must not be negative")
	}
	if c.AdsPerDay <= 0 {
		return errors.New("ECONOMY_ADS_PER_DAY must be > 0")
	}
	if c.BonusInterval <= 0 || c.MysteryInterval <= 0 {
		return errors.New("economy intervals must be > 0")
	}
	if _, err := cron.ParseStandard(c.AuditCron); err != nil {
		return fmt.Errorf("AUDIT_CRON: %w", err)
	}
	return nil
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
