// Package iam holds the Azure identity lifecycle modules.
package iam

import (
	"context"
	"fmt"
	"strconv"

	"github.com/entrascan/entrascan/internal/message"
	op "github.com/entrascan/entrascan/internal/output_providers"
	"github.com/entrascan/entrascan/modules"
	"github.com/entrascan/entrascan/pkg/azure/graph"
	o "github.com/entrascan/entrascan/pkg/options"
	"github.com/entrascan/entrascan/pkg/types"
)

var OffboardMetadata = modules.Metadata{
	Id:          "offboard",
	Name:        "User Offboarding",
	Description: "Disable an account and revoke its sign-in sessions",
	Platform:    modules.Azure,
	Authors:     []string{"EntraScan"},
	References: []string{
		"https://learn.microsoft.com/en-us/graph/api/user-revokesigninsessions",
	},
}

var OffboardRequiredOptions = []*types.Option{
	&o.AzureUserOpt,
	&o.AzureDryRunOpt,
	&o.FileNameOpt,
}

var OffboardOutputProviders = types.OutputProviders{
	op.NewJsonFileProvider,
	op.NewConsoleProvider,
}

// StepResult records the outcome of one offboarding action.
type StepResult struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type Offboard struct {
	modules.BaseModule
}

func NewOffboard(opts []*types.Option, run modules.Run) (modules.Module, error) {
	m := &Offboard{
		BaseModule: modules.BaseModule{
			Metadata: OffboardMetadata,
			Options:  opts,
			Run:      run,
		},
	}
	m.ConfigureOutputProviders(OffboardOutputProviders)
	return m, nil
}

func (m *Offboard) Invoke() error {
	defer close(m.Run.Data)

	principal := m.GetOptionByName(o.AzureUserOpt.Name).Value
	dryRun, _ := strconv.ParseBool(m.GetOptionByName(o.AzureDryRunOpt.Name).Value)

	ctx := context.Background()
	client, err := graph.NewMSGraphClient(ctx)
	if err != nil {
		return err
	}

	return m.offboard(ctx, client, principal, dryRun)
}

// offboard runs the action sequence against an already-authenticated client.
// The target must resolve; each subsequent step is best effort so a partial
// offboarding still lands the steps it can.
func (m *Offboard) offboard(ctx context.Context, client graph.DirectoryClient, principal string, dryRun bool) error {
	target, err := client.GetUser(ctx, principal)
	if err != nil {
		return fmt.Errorf("user %s not found: %w", principal, err)
	}

	message.Info("Offboarding %s (%s)", target.DisplayName, target.UserPrincipalName)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"disable account", func() error { return client.DisableUser(ctx, target.ID) }},
		{"revoke sign-in sessions", func() error { return client.RevokeSignInSessions(ctx, target.ID) }},
	}

	var results []StepResult
	failed := 0
	for _, step := range steps {
		if dryRun {
			message.Warning("[dry run] would %s", step.name)
			results = append(results, StepResult{Step: step.name, Status: "skipped", Detail: "dry run"})
			continue
		}

		if err := step.fn(); err != nil {
			failed++
			message.Error("failed to %s: %s", step.name, err)
			results = append(results, StepResult{Step: step.name, Status: "failed", Detail: err.Error()})
			continue
		}

		message.Success("%s", step.name)
		results = append(results, StepResult{Step: step.name, Status: "done"})
	}

	m.Run.Data <- m.MakeResult(results, types.WithFilename(fmt.Sprintf("offboard-%s.json", target.ID)))

	if failed > 0 {
		return fmt.Errorf("offboarding %s finished with %d failed steps", target.UserPrincipalName, failed)
	}
	return nil
}
