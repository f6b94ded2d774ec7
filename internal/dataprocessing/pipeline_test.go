package dataprocessing

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"absencecli/internal/errors"
	"absencecli/internal/infrastructure"
	"absencecli/internal/shared/testutil"
	"absencecli/pkg/contracts/domain"
)

func sampleRaws() []domain.RawEntry {
	rows := testutil.SampleExportRows()
	raws := make([]domain.RawEntry, len(rows))
	for i, r := range rows {
		raws[i] = domain.RawEntry{Row: i + 2, AbsenceField: r[0], PersonName: r[1], StatusText: r[2], UpdatedAt: r[3]}
	}
	return raws
}

func TestPipeline_Summarize(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	result, err := NewPipeline(logger, nil, nil).Summarize(context.Background(), sampleRaws(), DefaultOptions())
	require.NoError(t, err)

	assert.Len(t, result.Entries, 4)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, []domain.PersonSummary{
		{PersonName: "Alice", ExcusedTotal: 1, UnexcusedTotal: 4, GrandTotal: 5, Unit: domain.UnitHours},
		{PersonName: "Bob", ExcusedTotal: 1, UnexcusedTotal: 12, GrandTotal: 13, Unit: domain.UnitHours},
	}, result.Summaries)
}

func TestPipeline_SummarizeMinutes(t *testing.T) {
	opts := DefaultOptions()
	opts.Unit = domain.UnitMinutes

	result, err := NewPipeline(nil, nil, nil).Summarize(context.Background(), sampleRaws(), opts)
	require.NoError(t, err)
	require.Len(t, result.Summaries, 2)
	assert.Equal(t, domain.PersonSummary{PersonName: "Alice", ExcusedTotal: 67, UnexcusedTotal: 268, GrandTotal: 335, Unit: domain.UnitMinutes}, result.Summaries[0])
}

func TestPipeline_ErrorPolicies(t *testing.T) {
	raws := append(sampleRaws(), domain.RawEntry{Row: 6, AbsenceField: "25:99 - 26:00)", PersonName: "Carla", StatusText: "entschuldigt"})

	t.Run("fail-fast emits nothing", func(t *testing.T) {
		result, err := NewPipeline(nil, nil, nil).Summarize(context.Background(), raws, DefaultOptions())
		require.Error(t, err)
		assert.Nil(t, result)

		pe, ok := errors.AsParseError(err)
		require.True(t, ok)
		assert.Equal(t, 6, pe.Row)
		assert.Equal(t, "25:99 - 26:00)", pe.Raw)
	})

	t.Run("skip emits summaries for valid rows", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Policy = PolicySkip

		result, err := NewPipeline(nil, nil, nil).Summarize(context.Background(), raws, opts)
		require.NoError(t, err)
		assert.Equal(t, []int{6}, result.Skipped.Rows())
		require.Len(t, result.Summaries, 2)
		assert.Equal(t, "Alice", result.Summaries[0].PersonName)
		assert.Equal(t, "Bob", result.Summaries[1].PersonName)
	})
}

func TestPipeline_NormalizeDoesNotAggregate(t *testing.T) {
	result, err := NewPipeline(nil, nil, nil).Normalize(context.Background(), sampleRaws(), DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, result.Entries, 4)
	assert.Nil(t, result.Summaries)
}

func TestPipeline_EmptyInput(t *testing.T) {
	result, err := NewPipeline(nil, nil, nil).Summarize(context.Background(), nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, result.Summaries)
	assert.NotNil(t, result.Summaries)
}

func TestPipeline_TracingAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{EnableMetrics: true, TraceExporter: "none"}, nil)
	require.NoError(t, err)
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	raws := append(sampleRaws(), domain.RawEntry{Row: 6, AbsenceField: "(10:00 - 09:00)", PersonName: "Carla"})
	opts := DefaultOptions()
	opts.Policy = PolicySkip

	_, err = NewPipeline(nil, tp.Tracer("test"), metrics).Summarize(context.Background(), raws, opts)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, s := range recorder.Ended() {
		names[s.Name()] = true
	}
	assert.True(t, names["absence.summarize"])
	assert.True(t, names["absence.normalize_rows"])
	assert.True(t, names["absence.aggregate"])

	path := t.TempDir() + "/metrics.prom"
	require.NoError(t, providers.WriteMetricsTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `absence_parse_errors_total{`)
	assert.Contains(t, string(data), `reason="range ends before it starts"`)
	assert.Contains(t, string(data), `kind="date_range"`)
}
