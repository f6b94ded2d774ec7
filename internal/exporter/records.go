package exporter

import (
	"absencecli/internal/dataprocessing"
	"absencecli/internal/errors"
	api "absencecli/pkg/contracts/api/v1"
	"absencecli/pkg/contracts/domain"
)

// Column headers of the exported tables
var (
	SummaryHeaders = []string{"Name", "Entschuldigt", "Unentschuldigt", "Gesamt"}
	EntryHeaders   = []string{"Zeile", "Name", "Status", "Art", "Dauer", "Einheit", "Aktualisiert am"}
)

// SummaryRecords renders one record per person in the given order
func SummaryRecords(summaries []domain.PersonSummary) [][]string {
	records := make([][]string, len(summaries))
	for i, s := range summaries {
		records[i] = []string{
			s.PersonName,
			formatInt(s.ExcusedTotal),
			formatInt(s.UnexcusedTotal),
			formatInt(s.GrandTotal),
		}
	}
	return records
}

// EntryRecords renders normalized entries with human-readable durations
func EntryRecords(entries []domain.NormalizedEntry, unit domain.Unit) [][]string {
	records := make([][]string, len(entries))
	for i, e := range entries {
		records[i] = []string{
			formatInt(int64(e.Row)),
			e.PersonName,
			e.Status.String(),
			string(e.Kind),
			dataprocessing.FormatDuration(e.Duration, unit),
			unit.Label(),
			e.UpdatedAt,
		}
	}
	return records
}

// SkippedRows converts a skip report into its wire form
func SkippedRows(skipped errors.ParseErrors) []api.SkippedRow {
	rows := make([]api.SkippedRow, len(skipped))
	for i, pe := range skipped {
		rows[i] = api.SkippedRow{Row: pe.Row, Raw: pe.Raw, Reason: pe.Reason}
	}
	return rows
}

// EntryViews converts normalized entries into their wire form
func EntryViews(entries []domain.NormalizedEntry, unit domain.Unit) []api.EntryView {
	views := make([]api.EntryView, len(entries))
	for i, e := range entries {
		views[i] = api.EntryView{
			Row:       e.Row,
			Name:      e.PersonName,
			Status:    e.Status,
			Kind:      e.Kind,
			Duration:  unit.FromSchoolHours(e.Duration),
			Display:   dataprocessing.FormatDuration(e.Duration, unit),
			UpdatedAt: e.UpdatedAt,
		}
	}
	return views
}
