package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/entrascan/entrascan/pkg/types"
)

var azureCmd = &cobra.Command{
	Use:     "azure",
	Aliases: []string{"az"},
	Short:   "azure commands",
	Long:    `Execute azure commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

var azureSecCmd = &cobra.Command{
	Use:   "sec",
	Short: "Azure security posture modules",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

var azureIamCmd = &cobra.Command{
	Use:   "iam",
	Short: "Azure identity lifecycle modules",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

func init() {
	azureCmd.AddCommand(azureSecCmd)
	azureCmd.AddCommand(azureIamCmd)
	rootCmd.AddCommand(azureCmd)
}

var azureCommonOptions = []*types.Option{}
