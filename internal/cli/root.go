package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"absencecli/internal/config"
	"absencecli/internal/infrastructure"
	"absencecli/internal/services"
	"absencecli/pkg/contracts"
)

var (
	configFile string
	// loadedConfig is set by the root pre-run hook
	loadedConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "absences",
	Short: "Normalize and summarize school attendance exports",
	Long: `absences reads attendance exports of a school administration system
(semicolon separated CSV or xlsx), converts every absence into school-hours
and sums excused and unexcused absences per person.`,
	Version:           contracts.Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ABSENCE_CONFIG, config.yaml or configs/config.yaml)")
}

// Execute runs the root command. The caller exits with status 1 on error.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	loadedConfig = cfg

	// one trace id per run
	cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
	return nil
}

// session holds what one command run needs
type session struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	service   *services.AbsenceService
}

func newSession(ctx context.Context) (*session, error) {
	cfg := loadedConfig
	if cfg == nil {
		cfg = config.Default()
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logger := infrastructure.LoggerWithContext(ctx, infrastructure.GetLogger())

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	service, err := services.NewAbsenceServiceFromConfig(cfg, paths, logger, providers.Tracer, metrics)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, paths: paths, logger: logger, providers: providers, service: service}, nil
}

// close writes the metrics textfile, if any, and shuts telemetry down.
// It runs after failed batches too so parse error counts are kept.
func (s *session) close(ctx context.Context, textfile string) error {
	if textfile == "" {
		textfile = s.cfg.Telemetry.MetricsTextfile
	}

	var err error
	if textfile != "" {
		if err = s.providers.WriteMetricsTextfile(textfile); err == nil {
			s.logger.DebugContext(ctx, "metrics textfile written", slog.String("path", textfile))
		}
	}
	if shutdownErr := s.providers.Shutdown(ctx); shutdownErr != nil {
		s.logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", shutdownErr.Error()))
	}
	return err
}

// absPath keeps user supplied output paths relative to the working directory
func absPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return filepath.Abs(path)
}
