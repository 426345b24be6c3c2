package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/alertautec/alertautec/internal/domain/auth"
	"github.com/alertautec/alertautec/internal/domain/payload"
	apperrors "github.com/alertautec/alertautec/internal/errors"
	"github.com/alertautec/alertautec/internal/ports"
)

// API paths for the user functions.
const (
	PathRegister = "/users/register"
	PathLogin    = "/users/login"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	API      ports.Requester
	Sessions ports.SessionStore
	Logger   *slog.Logger
	// Now and NewID are injectable for tests; they default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// AuthService registers and logs users in against the API and keeps the
// resulting session in the session store.
type AuthService struct {
	api      ports.Requester
	sessions ports.SessionStore
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	s := &AuthService{
		api:      opts.API,
		sessions: opts.Sessions,
		logger:   opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Nombre   string
	Apellido string
	Email    string
	Password string
	Role     domainauth.Role
}

// LoginResult is the outcome of a successful login. It is not persisted by Login.
type LoginResult struct {
	User  domainauth.User
	Token string
}

// Register creates an account. The e-mail is sent as the backend's tenant_id.
// The response body is discarded; API failures are returned unchanged.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	_, err := s.api.Request(ctx, ports.APIRequest{
		Method: http.MethodPost,
		Path:   PathRegister,
		Body: map[string]any{
			"tenant_id": in.Email,
			"password":  in.Password,
			"role":      in.Role,
			"nombre":    in.Nombre,
			"apellido":  in.Apellido,
		},
	})
	return err
}

// Login exchanges credentials for a user and token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	raw, err := s.api.Request(ctx, ports.APIRequest{
		Method: http.MethodPost,
		Path:   PathLogin,
		Body: map[string]any{
			"tenant_id": email,
			"password":  password,
		},
	})
	if err != nil {
		return nil, err
	}

	data := payload.Decode(raw).Object
	return &LoginResult{
		User:  s.userFromLogin(data, email),
		Token: fieldOr(data, "", "token"),
	}, nil
}

// userFromLogin builds the User from a login response. The name is
// "nombre apellido", else "nombre", else the submitted e-mail.
func (s *AuthService) userFromLogin(data map[string]any, email string) domainauth.User {
	nombre := fieldOr(data, "", "nombre")
	apellido := fieldOr(data, "", "apellido")

	name := email
	switch {
	case nombre != "" && apellido != "":
		name = nombre + " " + apellido
	case nombre != "":
		name = nombre
	}

	id, ok := payload.FieldString(data, "user_id")
	if !ok {
		id = s.newID()
	}

	return domainauth.User{
		ID:    id,
		Name:  name,
		Email: fieldOr(data, email, "tenant_id"),
		Role:  domainauth.Role(fieldOr(data, string(domainauth.DefaultRole), "role")),
	}
}

// RegisterAndLogin registers and then logs in with the same credentials.
// Login is only attempted after a successful registration; a failed login
// leaves the account registered.
func (s *AuthService) RegisterAndLogin(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	if err := s.Register(ctx, in); err != nil {
		return nil, err
	}
	res, err := s.Login(ctx, in.Email, in.Password)
	if err != nil {
		s.logger.WarnContext(ctx, "account registered but login failed", "email", in.Email, "error", err)
		return nil, err
	}
	return res, nil
}

// SignIn logs in and persists the session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domainauth.Session, error) {
	res, err := s.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, res)
}

// SignUp registers, logs in and persists the session.
func (s *AuthService) SignUp(ctx context.Context, in RegisterInput) (*domainauth.Session, error) {
	res, err := s.RegisterAndLogin(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, res)
}

// SignOut clears the stored session.
func (s *AuthService) SignOut(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

func (s *AuthService) persist(ctx context.Context, res *LoginResult) (*domainauth.Session, error) {
	if strings.TrimSpace(res.Token) == "" {
		return nil, apperrors.Unauthorized("login response did not include a token")
	}
	if err := s.sessions.Save(ctx, res.User, res.Token); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "session saved", "user_id", res.User.ID, "role", res.User.Role)
	return &domainauth.Session{User: res.User, Token: res.Token}, nil
}

// Restore rehydrates the stored session at start-up. It returns nil when no
// complete session is stored. An expired JWT is logged but still returned;
// the API is the authority on token validity.
func (s *AuthService) Restore(ctx context.Context) (*domainauth.Session, error) {
	user, err := s.sessions.Current(ctx)
	if err != nil || user == nil {
		return nil, err
	}
	token, err := s.sessions.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	if info := InspectToken(token, s.now()); info.Expired {
		s.logger.WarnContext(ctx, "stored session token has expired", "user_id", user.ID, "expired_at", info.ExpiresAt)
	}
	return &domainauth.Session{User: *user, Token: token}, nil
}

// RequireSession restores the session and fails with an unauthorized error when there is none.
func (s *AuthService) RequireSession(ctx context.Context) (*domainauth.Session, error) {
	sess, err := s.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperrors.Unauthorized("not signed in")
	}
	return sess, nil
}

// RequireAdmin restores the session and checks it may use administrative views.
func (s *AuthService) RequireAdmin(ctx context.Context) (*domainauth.Session, error) {
	sess, err := s.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.User.Role.IsAdmin() {
		return nil, apperrors.Forbidden("administrative views require the autoridad role")
	}
	return sess, nil
}

func fieldOr(obj map[string]any, fallback string, keys ...string) string {
	if v, ok := payload.FieldString(obj, keys...); ok {
		return v
	}
	return fallback
}
