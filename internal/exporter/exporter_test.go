package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"absencecli/internal/config"
	"absencecli/internal/errors"
	"absencecli/internal/infrastructure"
	api "absencecli/pkg/contracts/api/v1"
	"absencecli/pkg/contracts/domain"
)

func sampleReport() SummaryReport {
	return SummaryReport{
		GeneratedAt: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
		Unit:        domain.UnitHours,
		Persons: []domain.PersonSummary{
			{PersonName: "Alice", ExcusedTotal: 1, UnexcusedTotal: 4, GrandTotal: 5, Unit: domain.UnitHours},
			{PersonName: "Bob", ExcusedTotal: 2, UnexcusedTotal: 0, GrandTotal: 2, Unit: domain.UnitHours},
		},
		Skipped: errors.ParseErrors{errors.NewParseError(6, "25:99 - 26:00)", "invalid clock time", nil)},
	}
}

func TestExporter_ExportSummariesAllFormats(t *testing.T) {
	paths := config.PathsFrom(t.TempDir())

	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{EnableMetrics: true, TraceExporter: "none"}, nil)
	require.NoError(t, err)
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	exp := NewExporter(paths, nil, metrics, Options{Delimiter: ';'})
	files, err := exp.ExportSummaries(context.Background(), sampleReport(), "", []Format{FormatCSV, FormatXLSX, FormatJSON})
	require.NoError(t, err)

	require.Equal(t, []string{
		filepath.Join(paths.ReportsDir, "absence_summary_20240304.csv"),
		filepath.Join(paths.ReportsDir, "absence_summary_20240304.xlsx"),
		filepath.Join(paths.ReportsDir, "absence_summary_20240304.json"),
	}, files)

	t.Run("csv", func(t *testing.T) {
		data, err := os.ReadFile(files[0])
		require.NoError(t, err)
		assert.Equal(t, "Name;Entschuldigt;Unentschuldigt;Gesamt\nAlice;1;4;5\nBob;2;0;2\n", string(data))
	})

	t.Run("xlsx", func(t *testing.T) {
		f, err := excelize.OpenFile(files[1])
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(SummarySheet)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Name", "Entschuldigt", "Unentschuldigt", "Gesamt"},
			{"Alice", "1", "4", "5"},
			{"Bob", "2", "0", "2"},
		}, rows)
	})

	t.Run("json", func(t *testing.T) {
		data, err := os.ReadFile(files[2])
		require.NoError(t, err)

		var doc api.SummaryResponse
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, "v1", doc.FormatVersion)
		assert.Equal(t, domain.UnitHours, doc.Unit)
		assert.Equal(t, sampleReport().Persons, doc.Persons)
		assert.Equal(t, []api.SkippedRow{{Row: 6, Raw: "25:99 - 26:00)", Reason: "invalid clock time"}}, doc.Skipped)
	})

	t.Run("metrics", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "metrics.prom")
		require.NoError(t, providers.WriteMetricsTextfile(path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `absence_exports_written_total{format="xlsx"`)
	})
}

func TestExporter_ExportSummariesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	exp := NewExporter(nil, nil, nil, Options{})

	files, err := exp.ExportSummaries(context.Background(), sampleReport(), filepath.Join(dir, "out.csv"), []Format{FormatCSV, FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "out.csv"), filepath.Join(dir, "out.json")}, files)
}

func TestExporter_ExportSummariesErrors(t *testing.T) {
	t.Run("no destination", func(t *testing.T) {
		_, err := NewExporter(nil, nil, nil, Options{}).ExportSummaries(context.Background(), sampleReport(), "", nil)
		assert.Error(t, err)
	})

	t.Run("unwritable directory", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))

		_, err := NewExporter(nil, nil, nil, Options{}).ExportSummaries(context.Background(), sampleReport(), filepath.Join(blocker, "out"), []Format{FormatCSV})
		assert.ErrorContains(t, err, "failed to export csv summary")
	})

	t.Run("one failing format leaves no files", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "out")
		require.NoError(t, os.Mkdir(base+".xlsx", 0755))

		_, err := NewExporter(nil, nil, nil, Options{}).ExportSummaries(context.Background(), sampleReport(), base, []Format{FormatCSV, FormatXLSX, FormatJSON})
		assert.ErrorContains(t, err, "failed to export xlsx summary")

		assert.NoFileExists(t, base+".csv")
		assert.NoFileExists(t, base+".json")
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "out.xlsx", entries[0].Name())
	})
}

func TestExporter_ExportEntries(t *testing.T) {
	paths := config.PathsFrom(t.TempDir())
	exp := NewExporter(paths, nil, nil, Options{BOM: true})

	entries := []domain.NormalizedEntry{
		{Row: 2, PersonName: "Alice", Status: domain.StatusExcused, Kind: domain.KindClockRange, Duration: 1},
	}
	path, err := exp.ExportEntries(context.Background(), entries, domain.UnitMinutes, "entries.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "entries.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xef\xbb\xbfZeile;Name;Status;Art;Dauer;Einheit;Aktualisiert am\n2;Alice;entschuldigt;clock_range;67;Minuten;\n", string(data))
}

func TestExporter_WriteSummaryEmpty(t *testing.T) {
	exp := NewExporter(nil, nil, nil, Options{})

	var buf bytes.Buffer
	require.NoError(t, exp.WriteSummary(&buf, SummaryReport{Unit: domain.UnitHours}, FormatJSON))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []any{}, doc["persons"])
	assert.Equal(t, []any{}, doc["skipped"])
}
