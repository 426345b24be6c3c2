package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/alertautec/alertautec/config"
	domainauth "github.com/alertautec/alertautec/internal/domain/auth"
	apperrors "github.com/alertautec/alertautec/internal/errors"
	"github.com/alertautec/alertautec/internal/ports"
)

var _ ports.SessionStore = (*SessionService)(nil)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Store     ports.KeyValueStore
	Namespace string
	Logger    *slog.Logger
}

// SessionService keeps the current user and bearer token in durable storage
// under two independent keys: <namespace>_user (JSON) and <namespace>_token (raw).
type SessionService struct {
	store    ports.KeyValueStore
	userKey  string
	tokenKey string
	logger   *slog.Logger
}

// NewSessionService constructs a new SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	ns := strings.TrimSpace(opts.Namespace)
	if ns == "" {
		ns = config.DefaultSessionNamespace
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		store:    opts.Store,
		userKey:  ns + "_user",
		tokenKey: ns + "_token",
		logger:   logger,
	}
}

// Keys returns the storage keys for the user and the token.
func (s *SessionService) Keys() (userKey, tokenKey string) {
	return s.userKey, s.tokenKey
}

// Save overwrites any stored session with user and token.
func (s *SessionService) Save(ctx context.Context, user domainauth.User, token string) error {
	data, err := json.Marshal(user)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode session user")
	}
	if err := s.store.Set(ctx, s.userKey, string(data)); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "save session user")
	}
	if err := s.store.Set(ctx, s.tokenKey, token); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "save session token")
	}
	return nil
}

// Current returns the stored user, or nil when none is stored or the stored
// value is not valid JSON. Only storage failures are returned as errors.
func (s *SessionService) Current(ctx context.Context) (*domainauth.User, error) {
	raw, ok, err := s.store.Get(ctx, s.userKey)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "read session user")
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var user domainauth.User
	if unmarshalErr := json.Unmarshal([]byte(raw), &user); unmarshalErr != nil {
		s.logger.WarnContext(ctx, "ignoring unreadable session user", "key", s.userKey, "error", unmarshalErr)
		return nil, nil
	}
	return &user, nil
}

// Token returns the stored bearer token, or "" when none is stored.
func (s *SessionService) Token(ctx context.Context) (string, error) {
	token, ok, err := s.store.Get(ctx, s.tokenKey)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "read session token")
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// Clear removes both keys. Clearing an empty session is a no-op.
func (s *SessionService) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.userKey, s.tokenKey); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear session")
	}
	return nil
}

// Load returns the stored session only when both the user and the token are present.
func (s *SessionService) Load(ctx context.Context) (*domainauth.Session, error) {
	user, err := s.Current(ctx)
	if err != nil || user == nil {
		return nil, err
	}
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		s.logger.DebugContext(ctx, "stored user has no token; treating as signed out", "user_id", user.ID)
		return nil, nil
	}
	return &domainauth.Session{User: *user, Token: token}, nil
}
