package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrascan/entrascan/internal/message"
	"github.com/entrascan/entrascan/modules"
	"github.com/entrascan/entrascan/pkg/modules/azure/iam"
	"github.com/entrascan/entrascan/pkg/modules/azure/sec"
	"github.com/entrascan/entrascan/pkg/types"
)

// ModuleInfo is the registry entry list-modules renders.
type ModuleInfo struct {
	CommandPath string
	Name        string
	Description string
}

var registeredModules []ModuleInfo

func init() {
	// Azure Sec
	RegisterModule(azureSecCmd, sec.ShadowITMetadata, sec.ShadowITRequiredOptions, azureCommonOptions, sec.NewShadowIT)

	// Azure IAM
	RegisterModule(azureIamCmd, iam.OffboardMetadata, iam.OffboardRequiredOptions, azureCommonOptions, iam.NewOffboard)
}

func RegisterModule(cmd *cobra.Command, metadata modules.Metadata, required []*types.Option, common []*types.Option, factoryFn func(options []*types.Option, run modules.Run) (modules.Module, error)) {
	c := &cobra.Command{
		Use:   metadata.Id,
		Short: metadata.Description,
		Run: func(cmd *cobra.Command, args []string) {
			options := getOpts(cmd, required, common)
			run := modules.NewRun()
			m, err := factoryFn(options, run)
			if err != nil {
				message.Error("%s", err.Error())
				os.Exit(1)
			}
			runModule(m, metadata, run)
		},
	}

	options2Flag(required, common, c)
	cmd.AddCommand(c)

	group := strings.TrimPrefix(cmd.CommandPath(), rootCmd.Use+" ")
	registeredModules = append(registeredModules, ModuleInfo{
		CommandPath: strings.ReplaceAll(group, " ", "/") + "/" + metadata.Id,
		Name:        metadata.Name,
		Description: metadata.Description,
	})
}
