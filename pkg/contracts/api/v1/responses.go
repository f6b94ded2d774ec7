package api

import (
	"time"

	"absencecli/pkg/contracts/domain"
)

// SkippedRow describes an input row dropped under the skip policy
type SkippedRow struct {
	Row    int    `json:"row"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// SummaryResponse is the JSON document of a summarize run. The same layout
// is written by the json export format.
type SummaryResponse struct {
	FormatVersion string                 `json:"format_version"`
	GeneratedAt   time.Time              `json:"generated_at"`
	Unit          domain.Unit            `json:"unit"`
	Persons       []domain.PersonSummary `json:"persons"`
	Skipped       []SkippedRow           `json:"skipped"`
}

// EntryView is one normalized entry with its duration expressed in the
// requested unit
type EntryView struct {
	Row       int                 `json:"row"`
	Name      string              `json:"name"`
	Status    domain.Status       `json:"status"`
	Kind      domain.DurationKind `json:"kind"`
	Duration  float64             `json:"duration"`
	Display   string              `json:"display"`
	UpdatedAt string              `json:"updated_at,omitempty"`
}

// NormalizeResponse is the JSON document of a normalize run
type NormalizeResponse struct {
	Unit    domain.Unit  `json:"unit"`
	Entries []EntryView  `json:"entries"`
	Skipped []SkippedRow `json:"skipped"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}
