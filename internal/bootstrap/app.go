package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alertautec/alertautec/config"
	"github.com/alertautec/alertautec/internal/apiclient"
	"github.com/alertautec/alertautec/internal/ports"
	"github.com/alertautec/alertautec/internal/service"
)

// AppOptions contains what NewApp needs to assemble the services.
type AppOptions struct {
	Config config.AppConfig
	Logger *slog.Logger
	// Store overrides the configured session backend (tests).
	Store ports.KeyValueStore
}

// App holds the wired services used by the CLI.
type App struct {
	Config    config.AppConfig
	Logger    *slog.Logger
	Sessions  *service.SessionService
	API       *apiclient.Client
	Auth      *service.AuthService
	Incidents *service.IncidentService

	closeStore func() error
}

// NewApp validates the configuration, opens the session store and wires the
// API client and services around it.
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := ValidateAPIConfig(&cfg); err != nil {
		return nil, err
	}

	store := opts.Store
	closeStore := func() error { return nil }
	if store == nil {
		var err error
		store, closeStore, err = BuildSessionStore(ctx, SessionStoreConfig{
			Session: cfg.Session,
			Redis:   cfg.Redis,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
	}

	sessions := service.NewSessionService(service.SessionServiceOptions{
		Store:     store,
		Namespace: cfg.Session.Namespace,
		Logger:    logger,
	})

	api, err := apiclient.NewClient(apiclient.Config{
		BaseURL: cfg.API.URL,
		Timeout: cfg.API.Timeout,
		Tokens:  sessions,
		Logger:  logger,
	})
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("create api client: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Sessions: sessions,
		API:      api,
		Auth: service.NewAuthService(service.AuthServiceOptions{
			API:      api,
			Sessions: sessions,
			Logger:   logger,
		}),
		Incidents: service.NewIncidentService(service.IncidentServiceOptions{
			API:    api,
			Tokens: sessions,
			Logger: logger,
		}),
		closeStore: closeStore,
	}, nil
}

// Close releases the session backend.
func (a *App) Close() error {
	if a == nil || a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}
