package config

import (
	"strings"
	"time"
)

// APIConfig points the client at the AlertAUTEC API.
type APIConfig struct {
	// URL is the base URL the endpoint paths are appended to, e.g.
	// https://abc123.execute-api.us-east-1.amazonaws.com/dev
	URL string `env:"API_URL"`

	// Timeout bounds each request. Zero disables the client-side timeout.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"0s"`
}

// Sanitize trims the base URL and clamps negative timeouts to zero.
func (c *APIConfig) Sanitize() {
	c.URL = strings.TrimRight(trimmed(c.URL), "/")
	if c.Timeout < 0 {
		c.Timeout = 0
	}
}
