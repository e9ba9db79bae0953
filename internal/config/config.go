// Package config loads service settings from the environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/damon-houk/quickrate/internal/infrastructure/logger"
)

// HTTPConfig configures the inbound REST server
type HTTPConfig struct {
	Addr            string        `envconfig:"ADDR" default:":8080" validate:"required"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	RateLimitRPS    float64       `envconfig:"RATE_LIMIT_RPS" default:"5" validate:"gt=0"`
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"10" validate:"gte=1"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// ProviderConfig configures the Korea Exim exchange rate client
type ProviderConfig struct {
	BaseURL string        `envconfig:"BASE_URL" default:"https://www.koreaexim.go.kr/site/program/financial/exchangeJSON" validate:"required,url"`
	AuthKey string        `envconfig:"AUTH_KEY" validate:"required"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s" validate:"gte=0"`
}

// Config is the full service configuration
type Config struct {
	Env      string         `envconfig:"APP_ENV" default:"development"`
	LogLevel string         `envconfig:"LOG_LEVEL" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR FATAL"`
	HTTP     HTTPConfig     `envconfig:"HTTP"`
	Provider ProviderConfig `envconfig:"KOREAEXIM"`
}

// Load reads the given .env files (or ./.env when none are given), then binds and
// validates the environment. Missing .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	log := logger.GetDefaultLogger()

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			log.Debug("Environment file not found", map[string]interface{}{
				"path": path,
			})
			continue
		}

		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load environment file %s: %w", path, err)
		}

		log.Info("Environment loaded from file", map[string]interface{}{
			"path": path,
		})
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", describeValidation(err))
	}

	log.Info("App config loaded", map[string]interface{}{
		"env":              cfg.Env,
		"log_level":        cfg.LogLevel,
		"http_addr":        cfg.HTTP.Addr,
		"allowed_origins":  cfg.HTTP.AllowedOrigins,
		"rate_limit_rps":   cfg.HTTP.RateLimitRPS,
		"rate_limit_burst": cfg.HTTP.RateLimitBurst,
		"provider_url":     cfg.Provider.BaseURL,
		"provider_key":     MaskValue(cfg.Provider.AuthKey),
		"provider_timeout": cfg.Provider.Timeout.String(),
	})

	return &cfg, nil
}

// describeValidation flattens validator errors into one readable error
func describeValidation(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}

	return errors.New(strings.Join(msgs, "; "))
}

// MaskValue hides all but the edges of a secret for logging
func MaskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
