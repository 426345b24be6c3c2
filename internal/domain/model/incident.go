package model

import (
	"fmt"
	"strings"

	domainauth "github.com/alertautec/alertautec/internal/domain/auth"
)

// IncidentStatus is the client-side lifecycle vocabulary.
type IncidentStatus string

const (
	IncidentStatusPendiente  IncidentStatus = "pendiente"
	IncidentStatusEnAtencion IncidentStatus = "en_atencion"
	IncidentStatusResuelto   IncidentStatus = "resuelto"
)

// IncidentStatuses returns every status in lifecycle order.
func IncidentStatuses() []IncidentStatus {
	return []IncidentStatus{IncidentStatusPendiente, IncidentStatusEnAtencion, IncidentStatusResuelto}
}

// Valid reports whether s is a known status.
func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentStatusPendiente, IncidentStatusEnAtencion, IncidentStatusResuelto:
		return true
	default:
		return false
	}
}

// ParseIncidentStatus parses a status name case-insensitively.
func ParseIncidentStatus(v string) (IncidentStatus, error) {
	s := IncidentStatus(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q (valid options: pendiente, en_atencion, resuelto)", v)
	}
	return s, nil
}

// Phase is the backend's lifecycle vocabulary ("fase").
type Phase string

const (
	PhasePendiente Phase = "pendiente"
	PhaseEnProceso Phase = "en_proceso"
	PhaseResuelta  Phase = "resuelta"
)

// StatusToPhase maps a client status to the backend phase.
// Unknown statuses map to PhasePendiente so the mapping stays total.
func StatusToPhase(s IncidentStatus) Phase {
	switch s {
	case IncidentStatusEnAtencion:
		return PhaseEnProceso
	case IncidentStatusResuelto:
		return PhaseResuelta
	default:
		return PhasePendiente
	}
}

// PhaseToStatus maps a backend phase to the client status.
// Absent or unrecognized phases map to IncidentStatusPendiente.
func PhaseToStatus(p Phase) IncidentStatus {
	switch p {
	case PhaseEnProceso:
		return IncidentStatusEnAtencion
	case PhaseResuelta:
		return IncidentStatusResuelto
	default:
		return IncidentStatusPendiente
	}
}

// Urgency is the reporter's perceived severity.
type Urgency string

const (
	UrgencyBaja  Urgency = "baja"
	UrgencyMedia Urgency = "media"
	UrgencyAlta  Urgency = "alta"
)

// DefaultUrgency is used when the API omits urgency.
const DefaultUrgency = UrgencyMedia

// Urgencies returns every urgency from lowest to highest.
func Urgencies() []Urgency {
	return []Urgency{UrgencyBaja, UrgencyMedia, UrgencyAlta}
}

// Valid reports whether u is a known urgency.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyBaja, UrgencyMedia, UrgencyAlta:
		return true
	default:
		return false
	}
}

// ParseUrgency parses an urgency name case-insensitively.
func ParseUrgency(v string) (Urgency, error) {
	u := Urgency(strings.ToLower(strings.TrimSpace(v)))
	if !u.Valid() {
		return "", fmt.Errorf("invalid urgency %q (valid options: baja, media, alta)", v)
	}
	return u, nil
}

// Incident is the normalized view model for a reported incident.
// Timestamps are kept as the strings the API returned.
type Incident struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Location     string          `json:"location"`
	Description  string          `json:"description"`
	Urgency      Urgency         `json:"urgency"`
	Status       IncidentStatus  `json:"status"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
	CreatedBy    string          `json:"createdBy"`
	Role         domainauth.Role `json:"role"`
	AssignedTeam string          `json:"assignedTeam,omitempty"`
	AssignedTo   string          `json:"assignedTo,omitempty"`
}

// NewIncidentPayload carries the fields a reporter fills in.
type NewIncidentPayload struct {
	Type        string
	Location    string
	Description string
	Urgency     Urgency
}

// StatusUpdate echoes a requested status change. It is not a confirmed server state.
type StatusUpdate struct {
	ID     string         `json:"id"`
	Status IncidentStatus `json:"status"`
}
