package config

import (
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: API base URL and request timeout
//   - session.go: Session storage backend
//   - redis.go: Redis connection for the redis session backend
//   - auth.go: Registration rules
//   - log.go: Logging level and format
type AppConfig struct {
	// API connection configuration
	API APIConfig

	// Session storage configuration
	Session SessionConfig
	Redis   RedisConfig `envPrefix:"REDIS_"`

	// Registration rules
	Auth AuthConfig

	// Logging configuration
	Log LogConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Session.Sanitize()
	c.Auth.Sanitize()
}

func trimmed(s string) string { return strings.TrimSpace(s) }
