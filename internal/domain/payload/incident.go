package payload

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/alertautec/alertautec/internal/domain/auth"
	"github.com/alertautec/alertautec/internal/domain/model"
)

// Fallback values used when a backend record omits a field.
const (
	DefaultIncidentType = "Incidente"
	DefaultLocation     = "Sin ubicación"
	DefaultCreatedBy    = "desconocido"
)

// TimestampLayout matches the ISO-8601 form the web client produced (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Defaults supplies the non-constant fallbacks used by MapIncident.
// Zero-value fields fall back to time.Now and uuid.NewString.
type Defaults struct {
	Now   func() time.Time
	NewID func() string
}

func (d Defaults) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Defaults) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

// Timestamp formats t the way the API stores creation times.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MapIncident converts a backend record into a fully populated Incident.
// Every field has a default, so partial records never yield an incomplete value.
func MapIncident(item map[string]any, d Defaults) model.Incident {
	if item == nil {
		item = map[string]any{}
	}

	id, ok := firstString(item, "incidente_id", "id")
	if !ok {
		id = d.newID()
	}

	createdAt, ok := firstString(item, "fecha_creacion")
	if !ok {
		createdAt = Timestamp(d.now())
	}

	phase, _ := firstString(item, "fase")
	updatedAt, _ := firstString(item, "fecha_actualizacion")
	assignedTeam, _ := firstString(item, "assignedTeam")
	assignedTo, _ := firstString(item, "assignedTo")

	return model.Incident{
		ID:           id,
		Type:         stringOr(item, DefaultIncidentType, "tipo_incidencia", "type"),
		Location:     stringOr(item, DefaultLocation, "ubicacion", "location"),
		Description:  stringOr(item, "", "descripcion", "description"),
		Urgency:      model.Urgency(stringOr(item, string(model.DefaultUrgency), "urgencia")),
		Status:       model.PhaseToStatus(model.Phase(phase)),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		CreatedBy:    stringOr(item, DefaultCreatedBy, "reportado_por_nombre", "reportado_por", "createdBy"),
		Role:         domainauth.Role(stringOr(item, string(domainauth.DefaultRole), "role")),
		AssignedTeam: assignedTeam,
		AssignedTo:   assignedTo,
	}
}

// MapIncidentValue maps an arbitrary decoded element; non-objects map as empty records.
func MapIncidentValue(v any, d Defaults) model.Incident {
	obj, _ := v.(map[string]any)
	return MapIncident(obj, d)
}

// MapIncidents maps every record of a list payload, preserving order.
func MapIncidents(p Payload, d Defaults) []model.Incident {
	items := Items(p)
	out := make([]model.Incident, 0, len(items))
	for _, it := range items {
		out = append(out, MapIncidentValue(it, d))
	}
	return out
}

// firstString returns the first field in keys that is present and not null.
// Present empty strings win over later keys.
func firstString(item map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := item[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := scalarString(v); ok {
			return s, true
		}
	}
	return "", false
}

func stringOr(item map[string]any, fallback string, keys ...string) string {
	if s, ok := firstString(item, keys...); ok {
		return s
	}
	return fallback
}

// FieldString reads a scalar field from a decoded object.
func FieldString(obj map[string]any, keys ...string) (string, bool) {
	return firstString(obj, keys...)
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
