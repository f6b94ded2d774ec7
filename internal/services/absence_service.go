package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"absencecli/internal/config"
	"absencecli/internal/dataprocessing"
	"absencecli/internal/errors"
	"absencecli/internal/exporter"
	"absencecli/internal/files"
	"absencecli/internal/infrastructure"
	"absencecli/internal/validation"
	"absencecli/pkg/contracts/domain"
)

// AbsenceServiceDeps holds the collaborators of an AbsenceService.
// Zero values fall back to defaults.
type AbsenceServiceDeps struct {
	Paths        *config.Paths
	Logger       *slog.Logger
	Tracer       trace.Tracer
	Metrics      *infrastructure.PipelineMetrics
	Processing   dataprocessing.ProcessingOptions
	Read         dataprocessing.ReadOptions
	Export       exporter.Options
	Formats      []exporter.Format
	MaxInputSize int64
}

// AbsenceService reads attendance exports, runs the pipeline and writes
// the results. Each call is an independent batch.
type AbsenceService struct {
	paths     *config.Paths
	logger    *slog.Logger
	reader    *dataprocessing.ExportReader
	pipeline  *dataprocessing.Pipeline
	exporter  *exporter.Exporter
	validator *validation.FileValidator
	discovery *files.Discovery
	defaults  dataprocessing.ProcessingOptions
	formats   []exporter.Format
}

// SummarizeRequest describes one summarize run on a file
type SummarizeRequest struct {
	// InputPath is the export to read; empty picks the newest file in the
	// imports directory
	InputPath string
	// OutputPath is the summary path without extension; empty writes the
	// dated summary into the reports directory
	OutputPath string
	Options    dataprocessing.ProcessingOptions
	Formats    []exporter.Format
}

// SummarizeResult is the outcome of a summarize run
type SummarizeResult struct {
	InputPath string
	Files     []string
	Report    exporter.SummaryReport
	Entries   int
}

// NormalizeRequest describes one normalize run on a file
type NormalizeRequest struct {
	InputPath string
	// OutputPath receives the entry table; empty writes nothing
	OutputPath string
	Options    dataprocessing.ProcessingOptions
}

// NewAbsenceService creates the service
func NewAbsenceService(deps AbsenceServiceDeps) *AbsenceService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Processing == (dataprocessing.ProcessingOptions{}) {
		deps.Processing = dataprocessing.DefaultOptions()
	}
	if len(deps.Formats) == 0 {
		deps.Formats = []exporter.Format{exporter.FormatCSV}
	}
	if deps.MaxInputSize <= 0 {
		deps.MaxInputSize = config.MaxInputFileSize
	}

	basePath := ""
	if deps.Paths != nil {
		basePath = deps.Paths.ExecutableDir
	}

	logger.Info("AbsenceService initialized",
		slog.String("unit", string(deps.Processing.Unit)),
		slog.String("error_policy", string(deps.Processing.Policy)),
		slog.String("rounding", string(deps.Processing.Rounding)))

	return &AbsenceService{
		paths:     deps.Paths,
		logger:    infrastructure.WithComponent(logger, "absence_service"),
		reader:    dataprocessing.NewExportReader(logger, deps.Read),
		pipeline:  dataprocessing.NewPipeline(logger, deps.Tracer, deps.Metrics),
		exporter:  exporter.NewExporter(deps.Paths, logger, deps.Metrics, deps.Export),
		validator: validation.NewFileValidator(logger, config.SupportedInputExtensions, deps.MaxInputSize),
		discovery: files.NewDiscovery(basePath, config.SupportedInputExtensions),
		defaults:  deps.Processing,
		formats:   deps.Formats,
	}
}

// NewAbsenceServiceFromConfig wires the service from the loaded configuration
func NewAbsenceServiceFromConfig(cfg *config.Config, paths *config.Paths, logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) (*AbsenceService, error) {
	opts, err := dataprocessing.OptionsFromConfig(cfg.Processing)
	if err != nil {
		return nil, errors.NewConfigError("invalid processing settings", err)
	}
	formats, err := exporter.ParseFormats(cfg.Export.Formats)
	if err != nil {
		return nil, errors.NewConfigError("invalid export formats", err)
	}
	return NewAbsenceService(AbsenceServiceDeps{
		Paths:        paths,
		Logger:       logger,
		Tracer:       tracer,
		Metrics:      metrics,
		Processing:   opts,
		Read:         dataprocessing.ReadOptionsFromConfig(cfg.Processing),
		Export:       exporter.OptionsFromConfig(cfg.Processing, cfg.Export),
		Formats:      formats,
		MaxInputSize: config.MaxInputFileSize,
	}), nil
}

// Defaults returns the configured processing options
func (s *AbsenceService) Defaults() dataprocessing.ProcessingOptions {
	return s.defaults
}

// Exporter returns the exporter used for file and stream output
func (s *AbsenceService) Exporter() *exporter.Exporter {
	return s.exporter
}

// SummarizeFile reads an export, aggregates it and writes the summary in
// every requested format. Under fail-fast a parse error aborts before any
// output file is touched.
func (s *AbsenceService) SummarizeFile(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	logger := infrastructure.LoggerWithContext(ctx, s.logger)

	input, err := s.resolveInput(req.InputPath)
	if err != nil {
		return nil, err
	}

	raws, err := s.reader.ReadFile(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.Summarize(ctx, raws, s.options(req.Options))
	if err != nil {
		logger.ErrorContext(ctx, "summarize failed, no output written",
			slog.String("input", input),
			slog.String("error", err.Error()))
		return nil, err
	}

	report := exporter.SummaryReport{
		GeneratedAt: time.Now(),
		Unit:        result.Unit,
		Persons:     result.Summaries,
		Skipped:     result.Skipped,
	}

	formats := req.Formats
	if len(formats) == 0 {
		formats = s.formats
	}
	if err := s.prepareOutput(req.OutputPath); err != nil {
		return nil, err
	}
	written, err := s.exporter.ExportSummaries(ctx, report, req.OutputPath, formats)
	if err != nil {
		return nil, errors.NewStorageError("failed to write summary", err)
	}

	logger.InfoContext(ctx, "summarize completed",
		slog.String("input", input),
		slog.Int("persons", len(result.Summaries)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Any("files", written))

	return &SummarizeResult{
		InputPath: input,
		Files:     written,
		Report:    report,
		Entries:   len(result.Entries),
	}, nil
}

// NormalizeFile reads an export and converts every row. The entry table is
// written to req.OutputPath when set.
func (s *AbsenceService) NormalizeFile(ctx context.Context, req NormalizeRequest) (*dataprocessing.Result, string, error) {
	input, err := s.resolveInput(req.InputPath)
	if err != nil {
		return nil, "", err
	}

	raws, err := s.reader.ReadFile(ctx, input)
	if err != nil {
		return nil, "", err
	}

	result, err := s.pipeline.Normalize(ctx, raws, s.options(req.Options))
	if err != nil {
		return nil, "", err
	}

	if req.OutputPath == "" {
		return result, "", nil
	}
	if err := s.prepareOutput(req.OutputPath); err != nil {
		return nil, "", err
	}
	written, err := s.exporter.ExportEntries(ctx, result.Entries, result.Unit, req.OutputPath)
	if err != nil {
		return nil, "", errors.NewStorageError("failed to write entries", err)
	}
	return result, written, nil
}

// SummarizeUpload runs the summarize pipeline on an uploaded export. name is
// the upload's file name and selects the reader by extension; an empty name
// is read as CSV.
func (s *AbsenceService) SummarizeUpload(ctx context.Context, r io.Reader, name string, opts dataprocessing.ProcessingOptions) (*dataprocessing.Result, error) {
	raws, err := s.readUpload(ctx, r, name)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Summarize(ctx, raws, s.options(opts))
}

// NormalizeUpload runs the normalize pipeline on an uploaded export
func (s *AbsenceService) NormalizeUpload(ctx context.Context, r io.Reader, name string, opts dataprocessing.ProcessingOptions) (*dataprocessing.Result, error) {
	raws, err := s.readUpload(ctx, r, name)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Normalize(ctx, raws, s.options(opts))
}

func (s *AbsenceService) resolveInput(path string) (string, error) {
	if path == "" {
		if s.paths == nil {
			return "", ErrNoInput
		}
		if err := s.validator.ValidateInputDirectory(s.paths.ImportsDir); err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoInput, err)
		}
		latest, err := s.discovery.LatestExport(s.paths.ImportsDir)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoInput, err)
		}
		s.logger.Info("using newest export from imports",
			slog.String("file", latest.Path),
			slog.Time("modified", latest.ModTime))
		path = latest.Path
	}

	if err := s.validator.ValidateInputFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// prepareOutput makes sure the directory of an explicit output path exists
// and is writable. The reports directory is handled by the exporter.
func (s *AbsenceService) prepareOutput(outputPath string) error {
	if outputPath == "" {
		return nil
	}
	return s.validator.ValidateOutputDirectory(filepath.Dir(outputPath))
}

func (s *AbsenceService) readUpload(ctx context.Context, r io.Reader, name string) ([]domain.RawEntry, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx":
		return s.reader.ReadXLSX(ctx, r)
	case "", ".csv", ".txt":
		return s.reader.ReadCSV(ctx, r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedUpload, ext)
	}
}

// options fills zero fields of a per-call override from the defaults
func (s *AbsenceService) options(opts dataprocessing.ProcessingOptions) dataprocessing.ProcessingOptions {
	if opts.Unit == "" {
		opts.Unit = s.defaults.Unit
	}
	if opts.Policy == "" {
		opts.Policy = s.defaults.Policy
	}
	if opts.Rounding == "" {
		opts.Rounding = s.defaults.Rounding
	}
	return opts
}
