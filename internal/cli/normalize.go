package cli

import (
	"github.com/spf13/cobra"

	"absencecli/internal/errors"
	"absencecli/internal/services"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Convert every absence row into a duration",
	Long: `Reads an attendance export and prints one line per row with its
duration kind and duration in the chosen unit. With --out the table is
written to that file instead of stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	addProcessingFlags(normalizeCmd)
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(ctx, ""); err == nil {
			err = closeErr
		}
	}()

	opts, err := s.service.Defaults().Override(unitFlag, policyFlag, roundingFlag)
	if err != nil {
		return errors.NewAppValidationError(err.Error())
	}

	out, err := absPath(outPath)
	if err != nil {
		return err
	}

	result, written, err := s.service.NormalizeFile(ctx, services.NormalizeRequest{
		InputPath:  args[0],
		OutputPath: out,
		Options:    opts,
	})
	if err != nil {
		return err
	}

	printSkipped(cmd, result.Skipped)
	if written == "" {
		return s.service.Exporter().WriteEntries(cmd.OutOrStdout(), result.Entries, result.Unit)
	}
	cmd.Printf("Wrote %d entries to %s\n", len(result.Entries), written)
	return nil
}
