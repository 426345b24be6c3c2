package ports

// Package ports defines interfaces (hexagonal ports) for session and API behavior.
// Implementations live in internal/adapters and internal/apiclient; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/alertautec/alertautec/internal/domain/auth"
)

// KeyValueStore is durable string storage for client-side state.
// Get reports ok=false when the key is absent. Delete ignores missing keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// TokenSource yields the bearer token for outgoing requests; empty means none.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SessionStore persists and retrieves the current user and token.
type SessionStore interface {
	TokenSource
	Save(ctx context.Context, user domainauth.User, token string) error
	Current(ctx context.Context) (*domainauth.User, error)
	Clear(ctx context.Context) error
}
