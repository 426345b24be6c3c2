package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SessionBackend selects where the session is persisted.
type SessionBackend string

const (
	// SessionBackendFile keeps the session in a JSON file under SESSION_DIR.
	SessionBackendFile SessionBackend = "file"
	// SessionBackendRedis keeps the session in Redis (REDIS_* settings).
	SessionBackendRedis SessionBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "file", "redis":
		*b = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: file, redis)", v)
	}
}

// DefaultSessionNamespace prefixes the two session keys (<namespace>_user, <namespace>_token).
const DefaultSessionNamespace = "alertautec"

// SessionConfig controls session persistence.
type SessionConfig struct {
	Backend   SessionBackend `env:"SESSION_BACKEND"   envDefault:"file"`
	Namespace string         `env:"SESSION_NAMESPACE" envDefault:"alertautec"`
	// Dir is used by the file backend. Empty means the user config directory.
	Dir string `env:"SESSION_DIR"`
}

// Sanitize fills defaults for empty values.
func (c *SessionConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = SessionBackendFile
	}
	c.Namespace = trimmed(c.Namespace)
	if c.Namespace == "" {
		c.Namespace = DefaultSessionNamespace
	}
	c.Dir = trimmed(c.Dir)
	if c.Dir == "" {
		c.Dir = defaultSessionDir()
	}
}

// defaultSessionDir resolves <user config dir>/alertautec, falling back to
// a dot directory in the working directory when no home is available.
func defaultSessionDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ".alertautec"
	}
	return filepath.Join(base, "alertautec")
}
