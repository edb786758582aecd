package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Database
	DatabaseURL        string `envconfig:"DATABASE_URL"`
	StatementTimeoutMS int    `envconfig:"DB_STATEMENT_TIMEOUT_MS" default:"1000"`

	// Wagering
	MinimumBet int64 `envconfig:"MINIMUM_BET" default:"10"`

	// Account requests
	AccountNumberPrefix     string `envconfig:"ACCOUNT_NUMBER_PREFIX" default:"CC"`
	AccountNumberMaxRetries int    `envconfig:"ACCOUNT_NUMBER_MAX_RETRIES" default:"5"`

	// Retention job
	PlayHistoryRetentionDays int    `envconfig:"PLAY_HISTORY_RETENTION_DAYS" default:"180"`
	RetentionSchedule        string `envconfig:"RETENTION_SCHEDULE" default:"0 4 * * *"`

	// Observability
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// Environment: "development", "production" or "test"
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if config.Environment != "test" {
		if strings.TrimSpace(config.DatabaseURL) == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}
	if config.MinimumBet <= 0 {
		return nil, fmt.Errorf("MINIMUM_BET must be positive")
	}
	if config.AccountNumberMaxRetries <= 0 {
		return nil, fmt.Errorf("ACCOUNT_NUMBER_MAX_RETRIES must be positive")
	}

	return &config, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:              "test",
		MinimumBet:               10,
		AccountNumberPrefix:      "CC",
		AccountNumberMaxRetries:  5,
		StatementTimeoutMS:       1000,
		PlayHistoryRetentionDays: 180,
	}
}
