package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// An empty key is allowed at boot; proxy requests then fail with a
	// configuration error instead of reaching the provider.
	LDFYAPIKey      string        `envconfig:"LDFY_API_KEY" default:""`
	LDFYEndpoint    string        `envconfig:"LDFY_ENDPOINT" default:"https://ldfy.cc/translation/language/translate"`
	LDFYEngineType  string        `envconfig:"LDFY_ENGINE_TYPE" default:"2"`
	SourceLang      string        `envconfig:"SOURCE_LANG" default:"sa"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"30s"`

	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"0"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	HoverRequestTimeout time.Duration `envconfig:"HOVER_REQUEST_TIMEOUT" default:"15s"`
	HoverMaxEntries     int           `envconfig:"HOVER_MAX_ENTRIES" default:"1024"`
	HoverCancelOnLeave  bool          `envconfig:"HOVER_CANCEL_ON_LEAVE" default:"false"`

	// ServerURL is where the client commands reach a running proxy.
	ServerURL string `envconfig:"SHLOKA_SERVER_URL" default:"http://127.0.0.1:8090"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validateHTTPURL("LDFY_ENDPOINT", c.LDFYEndpoint); err != nil {
		return err
	}
	if err := validateHTTPURL("SHLOKA_SERVER_URL", c.ServerURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.LDFYEngineType) == "" {
		return fmt.Errorf("LDFY_ENGINE_TYPE is required")
	}
	if strings.TrimSpace(c.SourceLang) == "" {
		return fmt.Errorf("SOURCE_LANG is required")
	}
	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be >= 0")
	}
	if c.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be >= 0")
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0 when RATE_LIMIT_REQUESTS is set")
	}
	if c.HoverRequestTimeout < 0 {
		return fmt.Errorf("HOVER_REQUEST_TIMEOUT must be >= 0")
	}
	if c.HoverMaxEntries < 1 {
		return fmt.Errorf("HOVER_MAX_ENTRIES must be >= 1")
	}
	return nil
}

func validateHTTPURL(name, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("%s is required", name)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL", name)
	}
	return nil
}

// APIKeyConfigured reports whether a non-blank provider key is present.
func (c *Config) APIKeyConfigured() bool {
	if c == nil {
		return false
	}
	return strings.TrimSpace(c.LDFYAPIKey) != ""
}
