// Package config provides configuration loading for vecbridge.
//
// Configuration comes from an optional YAML file overlaid with environment
// variables. Load reads the environment only; LoadWithFile adds the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultIndexNamePrefix is the collection name prefix for new datasets.
const DefaultIndexNamePrefix = "Vector_index"

// Config holds the complete vecbridge configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	VectorStore   VectorStoreConfig   `koanf:"vectorstore"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	// Type names the backend (chromem).
	Type string `koanf:"type"`

	// URL is the engine endpoint. Empty selects the engine default.
	URL string `koanf:"url"`

	// IndexNamePrefix prefixes generated collection names.
	IndexNamePrefix string `koanf:"index_name_prefix"`
}

// ObservabilityConfig holds logging and OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	ServiceName     string `koanf:"service_name"`
	OTLPEndpoint    string `koanf:"otlp_endpoint"`
	OTLPProtocol    string `koanf:"otlp_protocol"`
	LogLevel        string `koanf:"log_level"`
	LogFormat       string `koanf:"log_format"`
}

// Load loads configuration from environment variables with defaults.
//
// Environment variables:
//   - SERVER_HTTP_PORT: HTTP server port (default: 9191)
//   - SERVER_SHUTDOWN_TIMEOUT: Graceful shutdown timeout (default: 10s)
//   - VECTORSTORE_TYPE: Vector store backend (default: chromem)
//   - VECTORSTORE_URL: Engine endpoint (default: unset, in-memory)
//   - VECTORSTORE_INDEX_NAME_PREFIX: Collection name prefix (default: Vector_index)
//   - OBSERVABILITY_ENABLE_TELEMETRY: Enable OpenTelemetry export (default: false)
//   - OBSERVABILITY_SERVICE_NAME: Service name for traces (default: vecbridge)
//   - OBSERVABILITY_OTLP_ENDPOINT: OTLP collector endpoint (default: localhost:4317)
//   - OBSERVABILITY_OTLP_PROTOCOL: grpc or http/protobuf (default: grpc)
//   - OBSERVABILITY_LOG_LEVEL: Log level (default: info)
//   - OBSERVABILITY_LOG_FORMAT: json or console (default: json)
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_HTTP_PORT", 9191),
			ShutdownTimeout: Duration(getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)),
		},
		VectorStore: VectorStoreConfig{
			Type:            getEnvString("VECTORSTORE_TYPE", "chromem"),
			URL:             os.Getenv("VECTORSTORE_URL"),
			IndexNamePrefix: getEnvString("VECTORSTORE_INDEX_NAME_PREFIX", DefaultIndexNamePrefix),
		},
		Observability: ObservabilityConfig{
			EnableTelemetry: getEnvBool("OBSERVABILITY_ENABLE_TELEMETRY", false),
			ServiceName:     getEnvString("OBSERVABILITY_SERVICE_NAME", "vecbridge"),
			OTLPEndpoint:    getEnvString("OBSERVABILITY_OTLP_ENDPOINT", "localhost:4317"),
			OTLPProtocol:    getEnvString("OBSERVABILITY_OTLP_PROTOCOL", "grpc"),
			LogLevel:        getEnvString("OBSERVABILITY_LOG_LEVEL", "info"),
			LogFormat:       getEnvString("OBSERVABILITY_LOG_FORMAT", "json"),
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.VectorStore.Type == "" {
		return errors.New("vectorstore type is required")
	}
	if c.VectorStore.IndexNamePrefix == "" {
		return errors.New("vectorstore index name prefix is required")
	}
	if strings.ContainsAny(c.VectorStore.IndexNamePrefix, " /\\") {
		return fmt.Errorf("invalid vectorstore index name prefix: %q", c.VectorStore.IndexNamePrefix)
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}
	switch c.Observability.OTLPProtocol {
	case "", "grpc", "http/protobuf":
	default:
		return fmt.Errorf("invalid otlp protocol: %q (must be grpc or http/protobuf)", c.Observability.OTLPProtocol)
	}
	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q (must be json or console)", c.Observability.LogFormat)
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
