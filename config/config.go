package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"celestia/database"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL   string
	DatabaseName  string
	DBLockTimeout time.Duration // SET LOCAL lock_timeout for settlement transactions

	// HTTP configuration
	HTTPAddr string

	// Session configuration
	JWTSecret  string
	SessionTTL time.Duration
	RedisURL   string // Optional; revocations are kept in memory when empty

	// Verification provider configuration
	VerificationBaseURL string
	VerificationTimeout time.Duration

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), optional

	// Announcer configuration
	DiscordWebhookID    string
	DiscordWebhookToken string
	AnnounceMinStake    decimal.Decimal

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
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
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// AnnouncerEnabled reports whether a Discord webhook is configured
func (c *Config) AnnouncerEnabled() bool {
	return c.DiscordWebhookID != "" && c.DiscordWebhookToken != ""
}

// load loads configuration from the environment, after merging any .env file
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	config := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DatabaseName:  os.Getenv("DATABASE_NAME"),
		DBLockTimeout: time.Duration(getIntWithDefault("DB_LOCK_TIMEOUT_MS", 5000)) * time.Millisecond,

		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: time.Duration(getIntWithDefault("SESSION_TTL_MINUTES", 30)) * time.Minute,
		RedisURL:   os.Getenv("REDIS_URL"),

		VerificationBaseURL: getEnvWithDefault("VERIFICATION_BASE_URL", "https://slasapi.nelf.gov.ng/api"),
		VerificationTimeout: time.Duration(getIntWithDefault("VERIFICATION_TIMEOUT_SECONDS", 15)) * time.Second,

		NATSServers: os.Getenv("NATS_SERVERS"),

		DiscordWebhookID:    os.Getenv("DISCORD_WEBHOOK_ID"),
		DiscordWebhookToken: os.Getenv("DISCORD_WEBHOOK_TOKEN"),
		AnnounceMinStake:    decimal.NewFromInt(100),

		OTelEnabled:              getEnvWithDefault("OTEL_ENABLED", "false") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "celestia"),
		OTelExportIntervalMillis: getIntWithDefault("OTEL_EXPORT_INTERVAL_MILLIS", 10000),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if stake := os.Getenv("ANNOUNCE_MIN_STAKE"); stake != "" {
		parsed, err := decimal.NewFromString(stake)
		if err != nil {
			return nil, fmt.Errorf("invalid ANNOUNCE_MIN_STAKE %q: %w", stake, err)
		}
		config.AnnounceMinStake = parsed
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("log_level", c.LogLevel).Warn("Unknown log level, falling back to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntWithDefault parses an integer environment variable, ignoring malformed values
func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		log.WithField("key", key).Warnf("Ignoring invalid value %q", value)
		return defaultValue
	}
	return parsed
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		HTTPAddr:            ":0",
		JWTSecret:           "test-secret",
		SessionTTL:          30 * time.Minute,
		DBLockTimeout:       database.DefaultLockTimeout,
		VerificationTimeout: 5 * time.Second,
		AnnounceMinStake:    decimal.NewFromInt(100),
		OTelExporterType:    "none",
		OTelServiceName:     "celestia-test",
		LogLevel:            "info",
		LogFormat:           "text",
	}
}
