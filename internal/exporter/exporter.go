package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"absencecli/internal/config"
	"absencecli/internal/infrastructure"
	"absencecli/pkg/contracts/domain"
)

// Options configures an Exporter
type Options struct {
	Delimiter rune
	BOM       bool
}

// OptionsFromConfig builds exporter options from the configuration sections
func OptionsFromConfig(processing config.ProcessingConfig, export config.ExportConfig) Options {
	opts := Options{Delimiter: ';', BOM: export.BOM}
	if r := []rune(processing.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}

// Exporter writes summaries and normalized entries to files or streams
type Exporter struct {
	paths   *config.Paths
	csv     *CSVWriter
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
	bom     bool
}

// NewExporter creates an exporter. paths may be nil when every output path is
// absolute; metrics may be nil.
func NewExporter(paths *config.Paths, logger *slog.Logger, metrics *infrastructure.PipelineMetrics, opts Options) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "exporter")
	return &Exporter{
		paths:   paths,
		csv:     NewCSVWriter(paths, logger).WithDelimiter(opts.Delimiter),
		logger:  logger,
		metrics: metrics,
		bom:     opts.BOM,
	}
}

// ExportSummaries writes the report once per format and returns the written
// paths in format order. basePath is the output path without extension; an
// empty basePath selects the dated summary file in the reports directory.
// Formats are rendered in parallel into temporary files that are renamed into
// place only once all of them succeeded. On error no file of this run is left
// in place.
func (e *Exporter) ExportSummaries(ctx context.Context, report SummaryReport, basePath string, formats []Format) ([]string, error) {
	if len(formats) == 0 {
		formats = []Format{FormatCSV}
	}
	if basePath == "" && e.paths == nil {
		return nil, fmt.Errorf("no output path and no reports directory configured")
	}

	paths := make([]string, len(formats))
	staged := make([]string, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		paths[i] = e.summaryPath(basePath, report.GeneratedAt, format)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tmp, err := e.stageSummary(paths[i], report, format)
			if err != nil {
				return fmt.Errorf("failed to export %s summary: %w", format, err)
			}
			staged[i] = tmp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		removeAll(staged)
		return nil, err
	}

	for i, format := range formats {
		if err := commitFile(staged[i], paths[i]); err != nil {
			removeAll(paths[:i])
			removeAll(staged[i+1:])
			e.logger.ErrorContext(ctx, "summary export rolled back",
				slog.String("format", string(format)),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to export %s summary: %w", format, err)
		}
	}
	for _, format := range formats {
		e.recordExport(ctx, format)
	}

	e.logger.InfoContext(ctx, "summary exported",
		slog.Int("persons", len(report.Persons)),
		slog.String("unit", string(report.Unit)),
		slog.Any("files", paths))
	return paths, nil
}

// ExportEntries writes the normalized entry table to a CSV file
func (e *Exporter) ExportEntries(ctx context.Context, entries []domain.NormalizedEntry, unit domain.Unit, path string) (string, error) {
	written, err := e.csv.WriteCSV(path, WriteOptions{
		Headers:   EntryHeaders,
		Records:   EntryRecords(entries, unit),
		BOMPrefix: e.bom,
	})
	if err != nil {
		return "", fmt.Errorf("failed to export entries: %w", err)
	}
	e.recordExport(ctx, FormatCSV)
	return written, nil
}

// WriteSummary streams the summary in the given format to out
func (e *Exporter) WriteSummary(out io.Writer, report SummaryReport, format Format) error {
	switch format {
	case FormatXLSX:
		return EncodeSummaryXLSX(out, report.Persons)
	case FormatJSON:
		return EncodeJSON(out, report.Document())
	default:
		return e.csv.Encode(out, WriteOptions{
			Headers:   SummaryHeaders,
			Records:   SummaryRecords(report.Persons),
			BOMPrefix: e.bom,
		})
	}
}

// WriteEntries streams the normalized entry table as CSV to out
func (e *Exporter) WriteEntries(out io.Writer, entries []domain.NormalizedEntry, unit domain.Unit) error {
	return e.csv.Encode(out, WriteOptions{
		Headers:   EntryHeaders,
		Records:   EntryRecords(entries, unit),
		BOMPrefix: e.bom,
	})
}

func (e *Exporter) stageSummary(path string, report SummaryReport, format Format) (string, error) {
	return stageFile(path, func(out io.Writer) error {
		return e.WriteSummary(out, report, format)
	})
}

func removeAll(paths []string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
}

func (e *Exporter) summaryPath(basePath string, generated time.Time, format Format) string {
	if basePath == "" {
		if generated.IsZero() {
			generated = time.Now()
		}
		return e.paths.GetSummaryPath(generated, format.Extension())
	}
	base := basePath
	for _, f := range []Format{FormatCSV, FormatXLSX, FormatJSON} {
		base = strings.TrimSuffix(base, "."+f.Extension())
	}
	return e.csv.resolvePath(base + "." + format.Extension())
}

func (e *Exporter) recordExport(ctx context.Context, format Format) {
	if e.metrics == nil || e.metrics.ExportsWritten == nil {
		return
	}
	e.metrics.ExportsWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("format", string(format))))
}
