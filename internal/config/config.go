package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the workflow tool, loaded from
// environment variables with github.com/caarlos0/env. A .env file, if
// present, is applied by main before Load runs.
type Config struct {
	// BaseURL is the root of the remote job service. Required.
	BaseURL string `env:"SEARCH_BASE_URL"`

	// Endpoint paths under BaseURL. StatusPath must contain the
	// "{handle}" placeholder.
	SubmitPath string `env:"SEARCH_SUBMIT_PATH" envDefault:"/search/submit"`
	StatusPath string `env:"SEARCH_STATUS_PATH" envDefault:"/search/status/{handle}"`
	HealthPath string `env:"SEARCH_HEALTH_PATH" envDefault:"/health"`

	// PollInterval is the delay between status requests. RequestTimeout
	// bounds each individual HTTP call and is deliberately independent
	// of the interval so a hung connection can't eat the attempt budget.
	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"3s"`
	MaxAttempts    int           `env:"MAX_ATTEMPTS" envDefault:"20"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// AuthHeader is passed through verbatim as the Authorization header
	// when set. The tool has no opinion about the scheme.
	AuthHeader string `env:"SEARCH_AUTH_HEADER"`

	// DataDir is where run artifacts are written.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// MetricsAddr enables a prometheus /metrics listener when non-empty.
	MetricsAddr string `env:"METRICS_ADDR"`

	// SkipHealthCheck disables the liveness precheck before submission.
	SkipHealthCheck bool `env:"SKIP_HEALTH_CHECK" envDefault:"false"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate applies guardrails to configuration values loaded from env.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("SEARCH_BASE_URL is required")
	}
	if !strings.Contains(c.StatusPath, "{handle}") {
		return fmt.Errorf("SEARCH_STATUS_PATH must contain the {handle} placeholder, got %q", c.StatusPath)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("MAX_ATTEMPTS must be positive, got %d", c.MaxAttempts)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
