// Package config reads service configuration from the environment, loading a
// .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chris/vault-wallet/pkg/storage/dynamodb"
	"github.com/joho/godotenv"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds every setting used by the binaries. Each binary reads the fields it needs.
type Config struct {
	Port string

	StorageBackend string
	Tables         dynamodb.Tables

	LedgerBackend string
	LedgerDSN     string

	SQSQueueURL string
	RedisURL    string

	JWTSecret string

	RateLimitRPS   float64
	RateLimitBurst int

	ReconcileCron   string
	ReconcileRepair bool
	StuckThreshold  time.Duration

	LogLevel string
	LogFile  string
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", BackendDynamoDB)),
		Tables: dynamodb.Tables{
			GroupVaults: os.Getenv("DYNAMODB_GROUP_VAULTS_TABLE_NAME"),
			Members:     os.Getenv("DYNAMODB_MEMBERS_TABLE_NAME"),
			Activity:    os.Getenv("DYNAMODB_ACTIVITY_TABLE_NAME"),
			Intents:     os.Getenv("DYNAMODB_INTENTS_TABLE_NAME"),
			Banks:       os.Getenv("DYNAMODB_BANKS_TABLE_NAME"),
			Settings:    os.Getenv("DYNAMODB_SETTINGS_TABLE_NAME"),
		},
		LedgerBackend: strings.ToLower(getenv("LEDGER_BACKEND", BackendPostgres)),
		LedgerDSN:     os.Getenv("LEDGER_DATABASE_URL"),
		SQSQueueURL:   os.Getenv("SQS_QUEUE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSecret:     os.Getenv("SUPABASE_JWT_SECRET"),
		ReconcileCron: os.Getenv("RECONCILE_CRON"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
	}

	cfg.RateLimitRPS = parse(&errs, "RATE_LIMIT_RPS", 10.0, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	cfg.RateLimitBurst = parse(&errs, "RATE_LIMIT_BURST", 20, strconv.Atoi)
	cfg.ReconcileRepair = parse(&errs, "RECONCILE_REPAIR", false, strconv.ParseBool)
	cfg.StuckThreshold = parse(&errs, "RECONCILE_STUCK_THRESHOLD", 20*time.Minute, time.ParseDuration)

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.StorageBackend {
	case BackendDynamoDB:
		if err := c.Tables.Validate(); err != nil {
			errs = append(errs, err)
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendDynamoDB, BackendMemory, c.StorageBackend))
	}

	switch c.LedgerBackend {
	case BackendPostgres:
		if c.LedgerDSN == "" {
			errs = append(errs, errors.New("LEDGER_DATABASE_URL environment variable not set"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("LEDGER_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.LedgerBackend))
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// RequireJWTSecret fails when the API cannot verify access tokens.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return errors.New("SUPABASE_JWT_SECRET environment variable not set")
	}
	return nil
}

// RequireQueue fails when no intent queue is configured.
func (c *Config) RequireQueue() error {
	if c.SQSQueueURL == "" {
		return errors.New("SQS_QUEUE_URL environment variable not set")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parse[T any](errs *[]error, key string, fallback T, fn func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := fn(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		return fallback
	}
	return v
}
