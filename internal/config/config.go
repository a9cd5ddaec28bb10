package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	CORSOrigin     string `mapstructure:"CORS_ORIGIN"`
	RateLimitPerIP int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	// Sheets API
	SheetsAPIURL       string `mapstructure:"SHEETS_API_URL"`
	SheetsAPIKey       string `mapstructure:"SHEETS_API_KEY"`
	SheetsTimeoutSec   int    `mapstructure:"SHEETS_API_TIMEOUT_SECONDS"`
	SchemaFile         string `mapstructure:"SCHEMA_FILE"`
	CBFailureThreshold int    `mapstructure:"CB_FAILURE_THRESHOLD"`
	CBOpenTimeoutSec   int    `mapstructure:"CB_OPEN_TIMEOUT_SECONDS"`

	// Redis (optional; empty disables cache, queue and the Redis session store)
	RedisURL         string `mapstructure:"REDIS_URL"`
	SheetCacheTTLSec int    `mapstructure:"SHEET_CACHE_TTL_SECONDS"`

	// Workers
	WorkerPoolSize int `mapstructure:"WORKER_POOL_SIZE"`
	JobMaxAttempts int `mapstructure:"JOB_MAX_ATTEMPTS"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Row caps per derived view
	CapCashflow  int `mapstructure:"CAP_CASHFLOW"`
	CapMovements int `mapstructure:"CAP_MOVEMENTS"`
	CapAudit     int `mapstructure:"CAP_AUDIT"`
	CapSuppliers int `mapstructure:"CAP_SUPPLIERS"`
	CapStock     int `mapstructure:"CAP_STOCK"`

	// Seed for the placeholder supplier metrics; 0 = time-based.
	SupplierMetricsSeed int64 `mapstructure:"SUPPLIER_METRICS_SEED"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// Optional .env file for local development; missing is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Every key needs a default so AutomaticEnv picks it up during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)

	v.SetDefault("SHEETS_API_URL", "http://localhost:3001")
	v.SetDefault("SHEETS_API_KEY", "")
	v.SetDefault("SHEETS_API_TIMEOUT_SECONDS", 15)
	v.SetDefault("SCHEMA_FILE", "")
	v.SetDefault("CB_FAILURE_THRESHOLD", 5)
	v.SetDefault("CB_OPEN_TIMEOUT_SECONDS", 30)

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SHEET_CACHE_TTL_SECONDS", 30)

	v.SetDefault("WORKER_POOL_SIZE", 2)
	v.SetDefault("JOB_MAX_ATTEMPTS", 1)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 8)

	v.SetDefault("CAP_CASHFLOW", 50)
	v.SetDefault("CAP_MOVEMENTS", 30)
	v.SetDefault("CAP_AUDIT", 20)
	v.SetDefault("CAP_SUPPLIERS", 100)
	v.SetDefault("CAP_STOCK", 100)

	v.SetDefault("SUPPLIER_METRICS_SEED", 0)
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.SheetsAPIURL == "" {
		return errors.New("config: SHEETS_API_URL is required")
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	if c.JWTExpirationHours <= 0 {
		return errors.New("config: JWT_EXPIRATION_HOURS must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func (c *Config) SheetsTimeout() time.Duration {
	return time.Duration(c.SheetsTimeoutSec) * time.Second
}

func (c *Config) SheetCacheTTL() time.Duration {
	return time.Duration(c.SheetCacheTTLSec) * time.Second
}

func (c *Config) CBOpenTimeout() time.Duration {
	return time.Duration(c.CBOpenTimeoutSec) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}
