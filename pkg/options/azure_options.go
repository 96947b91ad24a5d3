package options

import (
	"regexp"

	"github.com/entrascan/entrascan/pkg/types"
)

var AzureDryRunOpt = types.Option{
	Name:        "dry-run",
	Short:       "d",
	Description: "Report risky grants without revoking them",
	Required:    false,
	Type:        types.Bool,
	Value:       "true",
}

var AzureIPCOpt = types.Option{
	Name:        "ipc",
	Short:       "i",
	Description: "Emit line-delimited JSON events on stdout for a host process",
	Required:    false,
	Type:        types.Bool,
	Value:       "false",
}

var AzurePolicyOpt = types.Option{
	Name:        "policy",
	Short:       "p",
	Description: "YAML file overriding the built-in risky-scope policy",
	Required:    false,
	Type:        types.String,
	Value:       "",
}

var AzureCsvOpt = types.Option{
	Name:        "csv",
	Short:       "c",
	Description: "File name for the CSV export of all risky grants",
	Required:    false,
	Type:        types.String,
	Value:       "",
}

var AzureTimeoutOpt = types.Option{
	Name:        "timeout",
	Short:       "t",
	Description: "Per-service-principal role assignment fetch timeout in seconds",
	Required:    false,
	Type:        types.Int,
	Value:       "10",
}

var AzureUserOpt = types.Option{
	Name:        "user",
	Short:       "u",
	Description: "User principal name or object id of the account to offboard",
	Required:    true,
	Type:        types.String,
	Value:       "",
	ValueFormat: regexp.MustCompile(`^\S+$`),
}
