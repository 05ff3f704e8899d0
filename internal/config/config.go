package config

import (
	"os"
	"strconv"

	"datamend/internal/errors"
)

// Config represents the complete application configuration. It is built
// once at startup and passed explicitly to whoever needs it.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Logging LoggingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// StorageConfig holds upload handling settings
type StorageConfig struct {
	UploadDir      string
	MaxUploadBytes int64
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Storage: StorageConfig{
			UploadDir:      getEnvOrDefault("UPLOAD_DIR", os.TempDir()),
			MaxUploadBytes: getEnvInt64OrDefault("MAX_UPLOAD_BYTES", 16<<20),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.InvalidInput("PORT must not be empty")
	}
	if config.Storage.UploadDir == "" {
		return errors.InvalidInput("UPLOAD_DIR must not be empty")
	}
	if config.Storage.MaxUploadBytes <= 0 {
		return errors.InvalidInput("MAX_UPLOAD_BYTES must be positive")
	}
	if info, err := os.Stat(config.Storage.UploadDir); err != nil || !info.IsDir() {
		return errors.InvalidInput("UPLOAD_DIR must be an existing directory")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
