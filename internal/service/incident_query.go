package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/alertautec/alertautec/internal/domain/model"
	apperrors "github.com/alertautec/alertautec/internal/errors"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// NewJMESPathEvaluator returns the go-jmespath backed evaluator.
func NewJMESPathEvaluator() JMESPathEvaluator { return jmespathLibEvaluator{} }

// Query lists incidents and evaluates expr over their JSON view.
// An empty expression returns the JSON view unchanged.
func (s *IncidentService) Query(ctx context.Context, expr string) (any, error) {
	incidents, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.Filter(incidents, expr)
}

// Filter evaluates expr over the JSON view of incidents, e.g.
// "[?status=='pendiente' && urgency=='alta'].id".
func (s *IncidentService) Filter(incidents []model.Incident, expr string) (any, error) {
	ev := s.evaluator
	if err := ev.Validate(expr); err != nil {
		return nil, apperrors.ValidationField("query", fmt.Sprintf("invalid JMESPath expression: %v", err))
	}

	view, err := jsonView(incidents)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(expr) == "" {
		return view, nil
	}

	out, err := ev.Evaluate(expr, view)
	if err != nil {
		return nil, fmt.Errorf("evaluate query: %w", err)
	}
	return out, nil
}

// jsonView converts incidents into generic JSON values so expressions can use
// the same field names the JSON output shows.
func jsonView(incidents []model.Incident) ([]any, error) {
	if incidents == nil {
		incidents = []model.Incident{}
	}
	b, err := json.Marshal(incidents)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode incidents")
	}
	view := []any{}
	if err := json.Unmarshal(b, &view); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode incidents")
	}
	return view, nil
}
