package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"absencecli/internal/errors"
	"absencecli/internal/infrastructure"
	"absencecli/pkg/contracts/domain"
)

// Pipeline modes recorded on spans and metrics
const (
	ModeSummarize = "summarize"
	ModeNormalize = "normalize"
)

// Result is the outcome of one pipeline run
type Result struct {
	Entries   []domain.NormalizedEntry
	Summaries []domain.PersonSummary
	Skipped   errors.ParseErrors
	Unit      domain.Unit
}

// Pipeline runs the normalize and aggregate stages on one in-memory batch
type Pipeline struct {
	logger     *slog.Logger
	normalizer *DurationNormalizer
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
}

// NewPipeline creates a pipeline. tracer and metrics may be nil.
func NewPipeline(logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	return &Pipeline{
		logger:     logger,
		normalizer: NewDurationNormalizer(logger),
		tracer:     tracer,
		metrics:    metrics,
	}
}

// Normalize runs only the normalize stage
func (p *Pipeline) Normalize(ctx context.Context, raws []domain.RawEntry, opts ProcessingOptions) (*Result, error) {
	return p.run(ctx, ModeNormalize, raws, opts)
}

// Summarize normalizes and aggregates. Under fail-fast a parse error returns
// no result at all.
func (p *Pipeline) Summarize(ctx context.Context, raws []domain.RawEntry, opts ProcessingOptions) (*Result, error) {
	return p.run(ctx, ModeSummarize, raws, opts)
}

func (p *Pipeline) run(ctx context.Context, mode string, raws []domain.RawEntry, opts ProcessingOptions) (result *Result, err error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "absence."+mode, trace.WithAttributes(
		attribute.Int("absence.rows", len(raws)),
		attribute.String("absence.policy", string(opts.Policy)),
		attribute.String("absence.unit", string(opts.Unit)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		infrastructure.RecordPipelineRun(ctx, p.metrics, mode, time.Since(start), err)
	}()

	entries, skipped, err := p.normalize(ctx, raws, opts.Policy)
	if err != nil {
		return nil, err
	}

	result = &Result{Entries: entries, Skipped: skipped, Unit: opts.Unit}
	if mode == ModeSummarize {
		result.Summaries = p.aggregate(ctx, entries, opts)
	}

	infrastructure.LoggerWithContext(ctx, p.logger).InfoContext(ctx, "pipeline finished",
		slog.String("mode", mode),
		slog.Int("rows", len(raws)),
		slog.Int("entries", len(entries)),
		slog.Int("skipped", len(skipped)),
		slog.Int("persons", len(result.Summaries)),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

func (p *Pipeline) normalize(ctx context.Context, raws []domain.RawEntry, policy ErrorPolicy) ([]domain.NormalizedEntry, errors.ParseErrors, error) {
	ctx, span := p.tracer.Start(ctx, "absence.normalize_rows")
	defer span.End()

	entries, skipped, err := p.normalizer.NormalizeAll(ctx, raws, policy)
	if p.metrics != nil {
		if pe, ok := errors.AsParseError(err); ok {
			p.metrics.ParseErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", pe.Reason)))
		}
		for _, s := range skipped {
			p.metrics.ParseErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", s.Reason)))
		}
		kinds := make(map[domain.DurationKind]int64)
		for _, e := range entries {
			kinds[e.Kind]++
		}
		for kind, n := range kinds {
			p.metrics.EntriesNormalized.Add(ctx, n, metric.WithAttributes(attribute.String("kind", string(kind))))
		}
	}
	span.SetAttributes(
		attribute.Int("absence.entries", len(entries)),
		attribute.Int("absence.skipped", len(skipped)),
	)
	return entries, skipped, err
}

func (p *Pipeline) aggregate(ctx context.Context, entries []domain.NormalizedEntry, opts ProcessingOptions) []domain.PersonSummary {
	ctx, span := p.tracer.Start(ctx, "absence.aggregate")
	defer span.End()

	summaries := NewAggregator(p.logger, AggregatorConfig{Unit: opts.Unit, Rounding: opts.Rounding}).Aggregate(ctx, entries)
	if p.metrics != nil {
		p.metrics.PersonsSummarized.Add(ctx, int64(len(summaries)))
	}
	span.SetAttributes(attribute.Int("absence.persons", len(summaries)))
	return summaries
}
