// Package config provides configuration management for Nodeflow.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Observer ObserverConfig
	Executor ExecutorConfig
}

// ServerConfig holds server-related configuration, for the optional
// HTTP layer exposing the websocket observer and health checks.
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration. An empty URL
// means the SDK falls back to in-memory RunStore/TaskRecorder
// implementations instead of a Postgres-backed one.
type DatabaseConfig struct {
	URL             string
	MaxConnections  int
	MinConnections  int
	MaxIdleTime     time.Duration
	MaxConnLifetime time.Duration
	Debug           bool
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// ObserverConfig controls which observers a Client wires by default.
type ObserverConfig struct {
	EnableLogger        bool
	EnableWebSocket     bool
	WebSocketBufferSize int
}

// ExecutorConfig bounds best-of-N fan-out and batch runner concurrency.
type ExecutorConfig struct {
	MaxBestOfNParallelism int
	MaxBatchParallelism   int
}

// Load loads the configuration from environment variables, first
// loading a local .env file if present.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("NODEFLOW_PORT", 8686),
			Host:            getEnv("NODEFLOW_HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsDuration("NODEFLOW_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("NODEFLOW_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("NODEFLOW_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConnections:  getEnvAsInt("NODEFLOW_DB_MAX_CONNECTIONS", 20),
			MinConnections:  getEnvAsInt("NODEFLOW_DB_MIN_CONNECTIONS", 5),
			MaxIdleTime:     getEnvAsDuration("NODEFLOW_DB_MAX_IDLE_TIME", 30*time.Minute),
			MaxConnLifetime: getEnvAsDuration("NODEFLOW_DB_MAX_CONN_LIFETIME", time.Hour),
			Debug:           getEnvAsBool("NODEFLOW_DB_DEBUG", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("NODEFLOW_LOG_LEVEL", "info"),
			Format: getEnv("NODEFLOW_LOG_FORMAT", "json"),
		},
		Observer: ObserverConfig{
			EnableLogger:        getEnvAsBool("NODEFLOW_OBSERVER_LOGGER_ENABLED", true),
			EnableWebSocket:     getEnvAsBool("NODEFLOW_OBSERVER_WEBSOCKET_ENABLED", true),
			WebSocketBufferSize: getEnvAsInt("NODEFLOW_OBSERVER_WEBSOCKET_BUFFER_SIZE", 256),
		},
		Executor: ExecutorConfig{
			MaxBestOfNParallelism: getEnvAsInt("NODEFLOW_MAX_BEST_OF_N_PARALLELISM", 8),
			MaxBatchParallelism:   getEnvAsInt("NODEFLOW_MAX_BATCH_PARALLELISM", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// UsesPostgres reports whether the configuration points at a
// Postgres-backed store rather than the in-memory fallback.
func (c *Config) UsesPostgres() bool {
	return c.Database.URL != ""
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if c.Executor.MaxBestOfNParallelism < 1 {
		return fmt.Errorf("max best-of-n parallelism must be at least 1")
	}

	if c.Executor.MaxBatchParallelism < 1 {
		return fmt.Errorf("max batch parallelism must be at least 1")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
