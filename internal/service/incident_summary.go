package service

import (
	"time"

	"github.com/alertautec/alertautec/internal/domain/model"
)

// IncidentSummary aggregates incidents for the administrative dashboard.
type IncidentSummary struct {
	Total     int                          `json:"total"`
	ByStatus  map[model.IncidentStatus]int `json:"byStatus"`
	ByUrgency map[model.Urgency]int        `json:"byUrgency"`
	// Open counts incidents not yet resolved.
	Open int `json:"open"`
	// LatestCreatedAt is the most recent parseable createdAt, or "" when there is none.
	LatestCreatedAt string `json:"latestCreatedAt,omitempty"`
}

// Summarize counts incidents by status and urgency. Every known status and
// urgency appears in the maps, with zero when unused; unknown urgencies are
// counted under their raw value.
func Summarize(incidents []model.Incident) IncidentSummary {
	sum := IncidentSummary{
		Total:     len(incidents),
		ByStatus:  make(map[model.IncidentStatus]int, 3),
		ByUrgency: make(map[model.Urgency]int, 3),
	}
	for _, st := range model.IncidentStatuses() {
		sum.ByStatus[st] = 0
	}
	for _, u := range model.Urgencies() {
		sum.ByUrgency[u] = 0
	}

	var latest time.Time
	for _, inc := range incidents {
		sum.ByStatus[inc.Status]++
		sum.ByUrgency[inc.Urgency]++
		if inc.Status != model.IncidentStatusResuelto {
			sum.Open++
		}

		t, err := parseTimestamp(inc.CreatedAt)
		if err != nil {
			continue
		}
		if latest.IsZero() || t.After(latest) {
			latest = t
			sum.LatestCreatedAt = inc.CreatedAt
		}
	}
	return sum
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
