package config

import (
	"log"
	"os"
	"strconv"

	"gridxml/internal/errors"
)

// DefaultEncryptionSecret is used when ENCRYPTION_SECRET is not set.
// Running with it is a security policy failure, not a functional one:
// the cipher works, but every deployment shares the same key material.
const DefaultEncryptionSecret = "gridxml-default-secret"

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Paths  PathConfig
	Upload UploadConfig
	Cipher CipherConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// PathConfig holds file system paths for conversion artifacts
type PathConfig struct {
	UploadDir string
	OutputDir string
}

// UploadConfig holds upload validation settings
type UploadConfig struct {
	MaxUploadMB int64
}

// CipherConfig holds encryption-at-rest settings
type CipherConfig struct {
	Secret string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Paths: PathConfig{
			UploadDir: getEnvOrDefault("UPLOAD_DIR", "./uploads"),
			OutputDir: getEnvOrDefault("OUTPUT_DIR", "./output"),
		},
		Upload: UploadConfig{
			MaxUploadMB: getEnvInt64OrDefault("MAX_UPLOAD_MB", 50),
		},
		Cipher: CipherConfig{
			Secret: os.Getenv("ENCRYPTION_SECRET"),
		},
	}

	if config.Cipher.Secret == "" {
		log.Printf("[config] WARNING - ENCRYPTION_SECRET not set, falling back to built-in default; encrypted output is not protected")
		config.Cipher.Secret = DefaultEncryptionSecret
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Paths.UploadDir == "" {
		return errors.ConfigInvalid("upload directory is required")
	}
	if config.Paths.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Upload.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
