package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: Remote profile service endpoints
//   - auth.go: Sign-in mode and dev identity
//   - cache.go: Local session cache and Redis configuration
//   - upload.go: Attachment loading limits
//   - observability.go: Logging and metrics
type AppConfig struct {
	// IsDev controls development mode behavior (text logs, dev sign-in allowed).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Remote profile service configuration
	API APIConfig `envPrefix:"API_"`

	// Sign-in configuration
	Auth AuthConfig

	// Local session cache configuration
	Cache CacheConfig `envPrefix:"CACHE_"`
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Attachment loading configuration
	Upload UploadConfig `envPrefix:"UPLOAD_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Cache.Sanitize()
	c.Upload.Sanitize()
	c.Observability.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()

	// Mock sign-in is a development convenience only.
	if !c.IsDev {
		c.Auth.Mode = AuthModeRemote
	}
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
