package cli

import (
	"github.com/spf13/cobra"

	"absencecli/internal/app"
	"absencecli/internal/config"
	"absencecli/internal/infrastructure"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the summarize and normalize operations over HTTP",
	Long: `Starts an HTTP server with POST /api/v1/absences/summary and
POST /api/v1/absences/normalize. Each request body is one export, sent as
CSV or as the multipart field "file". Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadedConfig
	if cfg == nil {
		cfg = config.Default()
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	application, err := app.NewApplication(cfg, nil, infrastructure.GetLogger())
	if err != nil {
		return err
	}
	return application.Run(cmd.Context())
}
