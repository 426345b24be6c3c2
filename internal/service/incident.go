package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/alertautec/alertautec/internal/domain/auth"
	"github.com/alertautec/alertautec/internal/domain/model"
	"github.com/alertautec/alertautec/internal/domain/payload"
	apperrors "github.com/alertautec/alertautec/internal/errors"
	"github.com/alertautec/alertautec/internal/ports"
)

// API paths for the incident functions.
const (
	PathIncidentHistory = "/incidents/history"
	PathIncidentCreate  = "/incidents/create"
	PathIncidentUpdate  = "/incidents/update"
)

// IncidentServiceOptions groups dependencies for IncidentService.
type IncidentServiceOptions struct {
	API ports.Requester
	// Tokens gates create and update; both fail locally when it yields no token.
	Tokens ports.TokenSource
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
	// Evaluator runs --query expressions; defaults to go-jmespath.
	Evaluator JMESPathEvaluator
}

// IncidentService lists, reports and updates incidents through the API.
type IncidentService struct {
	api       ports.Requester
	tokens    ports.TokenSource
	logger    *slog.Logger
	defaults  payload.Defaults
	evaluator JMESPathEvaluator
}

// NewIncidentService constructs a new IncidentService.
func NewIncidentService(opts IncidentServiceOptions) *IncidentService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = NewJMESPathEvaluator()
	}
	return &IncidentService{
		api:       opts.API,
		tokens:    opts.Tokens,
		logger:    logger,
		defaults:  payload.Defaults{Now: now, NewID: newID},
		evaluator: evaluator,
	}
}

// List returns every incident in the order the API returned them.
func (s *IncidentService) List(ctx context.Context) ([]model.Incident, error) {
	raw, err := s.api.Request(ctx, ports.APIRequest{Method: http.MethodGet, Path: PathIncidentHistory})
	if err != nil {
		return nil, err
	}

	p := payload.Unwrap(raw)
	if p.Kind != payload.KindArray && p.Kind != payload.KindObject {
		s.logger.WarnContext(ctx, "unexpected incident history payload", "kind", p.Kind.String())
	}
	return payload.MapIncidents(p, s.defaults), nil
}

// GetByID lists all incidents and returns the one with the given id, or nil.
func (s *IncidentService) GetByID(ctx context.Context, id string) (*model.Incident, error) {
	incidents, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range incidents {
		if incidents[i].ID == id {
			return &incidents[i], nil
		}
	}
	return nil, nil
}

// Create reports a new incident on behalf of createdBy. When the API echoes the
// stored record it is returned; otherwise a pending incident is built locally.
func (s *IncidentService) Create(
	ctx context.Context,
	in model.NewIncidentPayload,
	createdBy string,
	role domainauth.Role,
) (*model.Incident, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}

	raw, err := s.api.Request(ctx, ports.APIRequest{
		Method: http.MethodPost,
		Path:   PathIncidentCreate,
		Body: map[string]any{
			"descripcion":          in.Description,
			"tipo_incidencia":      in.Type,
			"ubicacion":            in.Location,
			"urgencia":             in.Urgency,
			"gravedad":             in.Urgency,
			"reportado_por_nombre": createdBy,
			"role":                 role,
		},
	})
	if err != nil {
		return nil, err
	}

	p := payload.Unwrap(raw)
	if item, ok := p.Field("item").(map[string]any); ok {
		incident := payload.MapIncident(item, s.defaults)
		return &incident, nil
	}

	id, ok := payload.FieldString(p.Object, "incidente_id")
	if !ok {
		id = s.defaults.NewID()
	}
	s.logger.DebugContext(ctx, "create response carried no item; using local copy", "incident_id", id)

	return &model.Incident{
		ID:          id,
		Type:        in.Type,
		Location:    in.Location,
		Description: in.Description,
		Urgency:     in.Urgency,
		Status:      model.IncidentStatusPendiente,
		CreatedAt:   payload.Timestamp(s.defaults.Now()),
		CreatedBy:   createdBy,
		Role:        role,
	}, nil
}

// UpdateStatus asks the API to move an incident to status. The returned value
// echoes the request; it is not read back from the server.
func (s *IncidentService) UpdateStatus(ctx context.Context, id string, status model.IncidentStatus) (*model.StatusUpdate, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}

	_, err := s.api.Request(ctx, ports.APIRequest{
		Method: http.MethodPut,
		Path:   PathIncidentUpdate,
		Body: map[string]any{
			"incidente_id": id,
			"fase":         model.StatusToPhase(status),
		},
	})
	if err != nil {
		return nil, err
	}
	return &model.StatusUpdate{ID: id, Status: status}, nil
}

func (s *IncidentService) requireToken(ctx context.Context) error {
	if s.tokens == nil {
		return apperrors.Unauthorized("no session token")
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return apperrors.Unauthorized("no session token")
	}
	return nil
}
