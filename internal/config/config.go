package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Ledger   LedgerConfig
	Snapshot SnapshotConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LedgerConfig holds settings for the ledger engine and the transaction store.
type LedgerConfig struct {
	// EncryptionKeys is a comma-separated list of fernet keys for the details column.
	// Empty disables encryption at rest.
	EncryptionKeys string
	// AggregateShards is the number of goroutines used for large aggregations.
	AggregateShards int
	// CurrencyExponent is the number of minor-unit digits used when rendering display amounts.
	CurrencyExponent int32
}

// SnapshotConfig holds the metrics snapshot job configuration
type SnapshotConfig struct {
	Schedule string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	shards, err := getEnvInt("AGGREGATE_SHARDS", 4)
	if err != nil {
		return nil, err
	}
	if shards < 1 {
		return nil, fmt.Errorf("AGGREGATE_SHARDS must be at least 1, got %d", shards)
	}

	exponent, err := getEnvInt("CURRENCY_EXPONENT", 2)
	if err != nil {
		return nil, err
	}
	if exponent < 0 || exponent > 8 {
		return nil, fmt.Errorf("CURRENCY_EXPONENT must be between 0 and 8, got %d", exponent)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/ledger.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Ledger: LedgerConfig{
			EncryptionKeys:   os.Getenv("LEDGER_ENCRYPTION_KEY"),
			AggregateShards:  shards,
			CurrencyExponent: int32(exponent),
		},
		Snapshot: SnapshotConfig{
			Schedule: getEnv("SNAPSHOT_SCHEDULE", "@daily"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
