package exporter

import (
	"encoding/json"
	"io"
	"time"

	"absencecli/internal/errors"
	"absencecli/pkg/contracts"
	api "absencecli/pkg/contracts/api/v1"
	"absencecli/pkg/contracts/domain"
)

// SummaryReport is a finished summarize run ready to be exported
type SummaryReport struct {
	GeneratedAt time.Time
	Unit        domain.Unit
	Persons     []domain.PersonSummary
	Skipped     errors.ParseErrors
}

// Document returns the JSON form shared by the json export and the HTTP API
func (r SummaryReport) Document() api.SummaryResponse {
	persons := r.Persons
	if persons == nil {
		persons = []domain.PersonSummary{}
	}
	return api.SummaryResponse{
		FormatVersion: contracts.ExportFormatVersion,
		GeneratedAt:   r.GeneratedAt.UTC(),
		Unit:          r.Unit,
		Persons:       persons,
		Skipped:       SkippedRows(r.Skipped),
	}
}

// EncodeJSON writes v as indented JSON
func EncodeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
