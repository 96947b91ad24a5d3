package cmd

import (
	"github.com/spf13/cobra"

	"github.com/entrascan/entrascan/internal/message"
	"github.com/entrascan/entrascan/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of EntraScan",
	Run: func(cmd *cobra.Command, args []string) {
		message.Info("%s", version.FullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
