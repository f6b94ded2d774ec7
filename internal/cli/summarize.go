package cli

import (
	"github.com/spf13/cobra"

	"absencecli/internal/errors"
	"absencecli/internal/exporter"
	"absencecli/internal/services"
)

var (
	outPath         string
	unitFlag        string
	policyFlag      string
	roundingFlag    string
	formatFlag      string
	metricsTextfile string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Sum excused and unexcused absences per person",
	Long: `Reads an attendance export and writes one row per person with the
excused, unexcused and total absence. Without a file argument the newest
export in the imports directory is used. Under the fail-fast policy a
malformed row aborts the run and nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	addProcessingFlags(summarizeCmd)
	summarizeCmd.Flags().StringVar(&formatFlag, "format", "", "comma separated output formats: csv, xlsx, json")
	summarizeCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "write prometheus metrics to this file after the run")
	rootCmd.AddCommand(summarizeCmd)
}

func addProcessingFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path")
	cmd.Flags().StringVar(&unitFlag, "unit", "", "output unit: hours or minutes")
	cmd.Flags().StringVar(&policyFlag, "policy", "", "malformed row handling: fail-fast or skip")
	cmd.Flags().StringVar(&roundingFlag, "rounding", "", "fractional totals: truncate or round")
}

func runSummarize(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(ctx, metricsTextfile); err == nil {
			err = closeErr
		}
	}()

	opts, err := s.service.Defaults().Override(unitFlag, policyFlag, roundingFlag)
	if err != nil {
		return errors.NewAppValidationError(err.Error())
	}

	var formats []exporter.Format
	if formatFlag != "" {
		if formats, err = exporter.ParseFormats([]string{formatFlag}); err != nil {
			return errors.NewAppValidationError(err.Error())
		}
	}

	out, err := absPath(outPath)
	if err != nil {
		return err
	}

	req := services.SummarizeRequest{OutputPath: out, Options: opts, Formats: formats}
	if len(args) > 0 {
		req.InputPath = args[0]
	}

	result, err := s.service.SummarizeFile(ctx, req)
	if err != nil {
		return err
	}

	printSkipped(cmd, result.Report.Skipped)
	cmd.Printf("Summarized %d entries of %s for %d persons\n", result.Entries, result.InputPath, len(result.Report.Persons))
	for _, path := range result.Files {
		cmd.Printf("Wrote %s\n", path)
	}
	return nil
}

func printSkipped(cmd *cobra.Command, skipped errors.ParseErrors) {
	for _, pe := range skipped {
		cmd.PrintErrf("skipped row %d: %s (%q)\n", pe.Row, pe.Reason, pe.Raw)
	}
}
