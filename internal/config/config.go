package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds environment configuration shared by erpctl and the mock API
type Config struct {
	// Client Configuration
	Client ClientConfig

	// Mock API Configuration
	MockAPI MockAPIConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ClientConfig holds settings for the erpctl client
type ClientConfig struct {
	// APIURL overrides the server selected from erpctl.yaml when set
	APIURL  string        `validate:"omitempty,url"`
	Storage string        `validate:"oneof=keyring file"`
	Timeout time.Duration `validate:"gt=0"`
}

// MockAPIConfig holds settings for the development API server
type MockAPIConfig struct {
	DatabaseURL string `validate:"required"`
	Port        int    `validate:"min=1,max=65535"`
	JWTSecret   string `validate:"required,min=16"`
	// AllowOrigins lists browser origins accepted by CORS
	AllowOrigins []string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string `validate:"oneof=json console"` // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout := 30 * time.Second
	if raw := os.Getenv("ERPCTL_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ERPCTL_TIMEOUT %q: %w", raw, err)
		}
		timeout = d
	}

	port := 8080
	if raw := os.Getenv("PORT"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", raw, err)
		}
		port = p
	}

	cfg := &Config{
		Client: ClientConfig{
			APIURL:  os.Getenv("ERPCTL_API_URL"),
			Storage: getEnv("ERPCTL_STORAGE", "keyring"),
			Timeout: timeout,
		},
		MockAPI: MockAPIConfig{
			DatabaseURL:  getEnv("DATABASE_URL", "erp-mock.sqlite"),
			Port:         port,
			JWTSecret:    getEnv("JWT_SECRET", "erpctl-development-secret"),
			AllowOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration struct tags
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
