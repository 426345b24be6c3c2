package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alertautec/alertautec/config"
	"github.com/alertautec/alertautec/internal/adapters/filestore"
	redisadapter "github.com/alertautec/alertautec/internal/adapters/redis"
	"github.com/alertautec/alertautec/internal/ports"
)

// SessionStoreConfig contains configuration for the session storage backend.
type SessionStoreConfig struct {
	Session config.SessionConfig
	Redis   config.RedisConfig
	Logger  *slog.Logger
}

// BuildSessionStore opens the configured key-value backend. The returned
// close function releases backend resources and is never nil.
func BuildSessionStore(ctx context.Context, cfg SessionStoreConfig) (ports.KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := ConnectRedis(ctx, RedisOptions{RedisConfig: cfg.Redis, Logger: cfg.Logger})
		if err != nil {
			return nil, noop, fmt.Errorf("connect session redis: %w", err)
		}
		return redisadapter.NewKeyValueStoreWithPrefix(client, cfg.Redis.KeyPrefix), client.Close, nil

	case config.SessionBackendFile, "":
		store, err := filestore.New(filestore.Options{
			Dir:      cfg.Session.Dir,
			FileName: sessionFileName(cfg.Session.Namespace),
			Logger:   cfg.Logger,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("open session file: %w", err)
		}
		if cfg.Logger != nil {
			cfg.Logger.DebugContext(ctx, "using file session store", "path", store.Path())
		}
		return store, noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported session backend %q", cfg.Session.Backend)
	}
}

// sessionFileName names the session file <namespace>.json.
func sessionFileName(namespace string) string {
	ns := strings.TrimSpace(namespace)
	if ns == "" {
		ns = config.DefaultSessionNamespace
	}
	return filepath.Base(ns) + ".json"
}
