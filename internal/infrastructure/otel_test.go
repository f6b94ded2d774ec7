package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"absencecli/internal/config"
	"absencecli/internal/shared/testutil"
)

func newTestProviders(t *testing.T) *OTelProviders {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		EnableMetrics:  true,
		SampleRatio:    1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })
	return providers
}

func TestInitializeOTel_MetricsExposition(t *testing.T) {
	providers := newTestProviders(t)
	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.EntriesNormalized.Add(ctx, 3, metric.WithAttributes(attribute.String("kind", "clock_range")))
	RecordPipelineRun(ctx, metrics, "summarize", 20*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "absence_entries_normalized_total")
	assert.Contains(t, body, `kind="clock_range"`)
	assert.Contains(t, body, "absence_pipeline_runs_total")
}

func TestOTelProviders_WriteMetricsTextfile(t *testing.T) {
	providers := newTestProviders(t)
	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.PersonsSummarized.Add(context.Background(), 2)

	path := filepath.Join(t.TempDir(), "absences.prom")
	require.NoError(t, providers.WriteMetricsTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "absence_persons_summarized_total")
}

func TestOTelProviders_WriteMetricsTextfileWithoutMetrics(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{TraceExporter: "none"}, nil)
	require.NoError(t, err)
	assert.Error(t, providers.WriteMetricsTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestInitializeOTel_UnsupportedTraceExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "jaeger"}, nil)
	assert.Error(t, err)
}

func TestOTelConfigFromTelemetry(t *testing.T) {
	cfg := OTelConfigFromTelemetry(config.TelemetryConfig{Tracing: true, TraceExporter: "none"})
	assert.False(t, cfg.EnableTracing)

	cfg = OTelConfigFromTelemetry(config.TelemetryConfig{Tracing: true, TraceExporter: "stdout"})
	assert.True(t, cfg.EnableTracing)
	assert.True(t, cfg.EnableMetrics)
}

func TestRecordPipelineRun_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordPipelineRun(context.Background(), nil, "summarize", time.Second, errors.New("boom"))
	})
}
