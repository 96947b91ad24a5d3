// Package sec holds the Azure security posture modules.
package sec

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/entrascan/entrascan/internal/ipc"
	"github.com/entrascan/entrascan/internal/message"
	op "github.com/entrascan/entrascan/internal/output_providers"
	"github.com/entrascan/entrascan/modules"
	"github.com/entrascan/entrascan/pkg/azure/graph"
	"github.com/entrascan/entrascan/pkg/azure/shadowit"
	o "github.com/entrascan/entrascan/pkg/options"
	"github.com/entrascan/entrascan/pkg/types"
)

var ShadowITMetadata = modules.Metadata{
	Id:          "shadow-it",
	Name:        "Shadow IT Audit",
	Description: "Audit OAuth2 consents and app role grants for risky third-party applications",
	Platform:    modules.Azure,
	Authors:     []string{"EntraScan"},
	References: []string{
		"https://learn.microsoft.com/en-us/graph/api/resources/oauth2permissiongrant",
		"https://learn.microsoft.com/en-us/graph/api/resources/approleassignment",
	},
}

var ShadowITRequiredOptions = []*types.Option{
	&o.AzureDryRunOpt,
	&o.AzureIPCOpt,
	&o.AzurePolicyOpt,
	&o.AzureCsvOpt,
	&o.AzureTimeoutOpt,
}

var ShadowITOutputProviders = types.OutputProviders{
	op.NewJsonFileProvider,
	op.NewCsvFileProvider,
	op.NewMarkdownFileProvider,
}

type ShadowIT struct {
	modules.BaseModule
}

func NewShadowIT(opts []*types.Option, run modules.Run) (modules.Module, error) {
	m := &ShadowIT{
		BaseModule: modules.BaseModule{
			Metadata: ShadowITMetadata,
			Options:  opts,
			Run:      run,
		},
	}
	m.ConfigureOutputProviders(ShadowITOutputProviders)
	return m, nil
}

func (m *ShadowIT) Invoke() error {
	defer close(m.Run.Data)

	dryRun, _ := strconv.ParseBool(m.GetOptionByName(o.AzureDryRunOpt.Name).Value)
	useIPC, _ := strconv.ParseBool(m.GetOptionByName(o.AzureIPCOpt.Name).Value)
	timeoutSecs, _ := strconv.Atoi(m.GetOptionByName(o.AzureTimeoutOpt.Name).Value)
	if timeoutSecs <= 0 {
		timeoutSecs = int(shadowit.DefaultAssignmentTimeout / time.Second)
	}

	// In IPC mode stdout carries protocol events only; console chatter stays
	// on stderr either way.
	var emitter *ipc.Emitter
	if useIPC {
		emitter = ipc.Stdout()
	}

	progress := func(msg string, pct float64) {
		if emitter != nil {
			emitter.Progress(msg, pct)
			return
		}
		message.Info("[%3.0f%%] %s", pct, msg)
	}
	fail := func(err error) error {
		if emitter != nil {
			emitter.Error(err.Error())
		}
		return err
	}

	policy := shadowit.DefaultPolicy()
	if path := m.GetOptionByName(o.AzurePolicyOpt.Name).Value; path != "" {
		loaded, err := shadowit.LoadPolicy(path)
		if err != nil {
			return fail(err)
		}
		policy = loaded
	}

	ctx := context.Background()
	client, err := graph.NewMSGraphClient(ctx)
	if err != nil {
		return fail(err)
	}

	scanner := shadowit.NewScanner(client, policy,
		shadowit.WithProgress(progress),
		shadowit.WithAssignmentTimeout(time.Duration(timeoutSecs)*time.Second))

	grants, err := scanner.Scan(ctx)
	if err != nil {
		return fail(err)
	}

	if len(grants) == 0 {
		const clean = "No risky Shadow IT detected. Tenant is clean!"
		if emitter != nil {
			emitter.Success(ipc.SuccessPayload{Message: clean})
			emitter.Progress("Report sent successfully", 100)
		} else {
			message.Success(clean)
		}
		return nil
	}

	shadowit.SortByScore(grants)
	summary := shadowit.Summarize(grants)
	table := shadowit.BuildTable(grants)

	resultMessage := shadowit.SummaryText(summary)
	if !dryRun {
		report := shadowit.Remediate(ctx, client, grants, progress)
		resultMessage = report.Message()
		m.Run.Data <- m.MakeResult(report, types.WithFilename("shadow-it-remediation.json"))
	}

	if emitter != nil {
		emitter.Success(ipc.SuccessPayload{Message: resultMessage, Table: &table})
		emitter.Progress("Report sent successfully", 100)
	} else {
		message.Section("Shadow IT Audit: %d risky grants", summary.Total)
		fmt.Println(table.ToString())
		fmt.Println(resultMessage)
	}

	m.Run.Data <- m.MakeResult(grants, types.WithFilename("shadow-it-grants.json"))
	m.Run.Data <- m.MakeResult(table, types.WithFilename("shadow-it-report.md"))

	csvName := m.GetOptionByName(o.AzureCsvOpt.Name).Value
	if csvName == "" {
		csvName = "shadow-it-grants.csv"
	}
	m.Run.Data <- m.MakeResult(shadowit.CSVRecords(grants), types.WithFilename(csvName))

	return nil
}
