package cli

import (
	"github.com/spf13/cobra"

	"absencecli/pkg/contracts"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("%s, export format %s\n", contracts.GetFullVersionString(), contracts.GetVersionInfo().ExportFormat)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
