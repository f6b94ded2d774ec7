package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"absencecli/internal/app"
	"absencecli/internal/config"
	"absencecli/internal/dataprocessing"
	"absencecli/internal/exporter"
	"absencecli/internal/services"
	"absencecli/internal/shared/testutil"
	api "absencecli/pkg/contracts/api/v1"
	"absencecli/pkg/contracts/domain"
)

var wantSummaries = []domain.PersonSummary{
	{PersonName: "Alice", ExcusedTotal: 1, UnexcusedTotal: 4, GrandTotal: 5, Unit: domain.UnitHours},
	{PersonName: "Bob", ExcusedTotal: 1, UnexcusedTotal: 12, GrandTotal: 13, Unit: domain.UnitHours},
}

func newService(t *testing.T, paths *config.Paths) *services.AbsenceService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc, err := services.NewAbsenceServiceFromConfig(config.Default(), paths, logger, nil, nil)
	require.NoError(t, err)
	return svc
}

// TestImportsToReports drops an export into the imports directory and checks
// every summary format written into the reports directory
func TestImportsToReports(t *testing.T) {
	paths := config.PathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	testutil.WriteExport(t, paths.ImportsDir, testutil.SampleExportRows())

	result, err := newService(t, paths).SummarizeFile(context.Background(), services.SummarizeRequest{
		Formats: []exporter.Format{exporter.FormatCSV, exporter.FormatXLSX, exporter.FormatJSON},
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 3)
	assert.Equal(t, wantSummaries, result.Report.Persons)

	for _, path := range result.Files {
		assert.Equal(t, paths.ReportsDir, filepath.Dir(path))
		assert.True(t, strings.HasPrefix(filepath.Base(path), config.SummaryFilePrefix))
	}

	t.Run("csv", func(t *testing.T) {
		data, err := os.ReadFile(result.Files[0])
		require.NoError(t, err)
		assert.Equal(t, "Name;Entschuldigt;Unentschuldigt;Gesamt\nAlice;1;4;5\nBob;1;12;13\n", string(data))
	})

	t.Run("xlsx", func(t *testing.T) {
		f, err := excelize.OpenFile(result.Files[1])
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(exporter.SummarySheet)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Name", "Entschuldigt", "Unentschuldigt", "Gesamt"},
			{"Alice", "1", "4", "5"},
			{"Bob", "1", "12", "13"},
		}, rows)
	})

	t.Run("json", func(t *testing.T) {
		data, err := os.ReadFile(result.Files[2])
		require.NoError(t, err)
		var doc api.SummaryResponse
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, wantSummaries, doc.Persons)
		assert.Empty(t, doc.Skipped)
	})
}

// TestInputFormatsAgree checks that a workbook and its CSV rendering summarize identically
func TestInputFormatsAgree(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, config.PathsFrom(t.TempDir()))
	opts := dataprocessing.DefaultOptions()
	opts.Unit = domain.UnitMinutes

	var got [][]domain.PersonSummary
	for _, path := range []string{
		testutil.WriteExport(t, dir, testutil.SampleExportRows()),
		testutil.WriteWorkbook(t, dir, testutil.SampleExportRows()),
	} {
		result, err := svc.SummarizeFile(context.Background(), services.SummarizeRequest{
			InputPath:  path,
			OutputPath: filepath.Join(t.TempDir(), "summary"),
			Options:    opts,
		})
		require.NoError(t, err)
		got = append(got, result.Report.Persons)
	}

	assert.Equal(t, got[0], got[1])
	assert.EqualValues(t, 871, got[0][1].GrandTotal)
}

// TestHTTPMatchesFile compares the HTTP summary of an upload with the file run
func TestHTTPMatchesFile(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = 5 * time.Second
	logger, _ := testutil.NewTestLogger(t)
	application, err := app.NewApplication(cfg, config.PathsFrom(t.TempDir()), logger)
	require.NoError(t, err)

	server := httptest.NewServer(application.Router)
	defer server.Close()

	dir := t.TempDir()
	workbook := testutil.WriteWorkbook(t, dir, testutil.SampleExportRows())
	data, err := os.ReadFile(workbook)
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "export.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(server.URL+"/api/v1/absences/summary", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var doc api.SummaryResponse
	require.NoError(t, json.Unmarshal(raw, &doc))

	fileResult, err := application.AbsenceService.SummarizeFile(context.Background(), services.SummarizeRequest{
		InputPath:  workbook,
		OutputPath: filepath.Join(t.TempDir(), "summary"),
	})
	require.NoError(t, err)
	assert.Equal(t, fileResult.Report.Persons, doc.Persons)
}
