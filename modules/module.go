// Package modules defines the module framework: metadata, the module
// contract, and the base plumbing shared by every scan and action module.
package modules

import (
	"github.com/entrascan/entrascan/pkg/options"
	"github.com/entrascan/entrascan/pkg/types"
)

const (
	Azure     types.Platform = "azure"
	Universal types.Platform = "universal"
)

type Metadata struct {
	Id          string
	Name        string
	Description string
	Platform    types.Platform
	Authors     []string
	References  []string
}

type Module interface {
	Invoke() error
	GetOutputProviders() []types.OutputProvider
}

// Run carries results from an invoked module to the output providers. The
// module owns the channel and closes it when done.
type Run struct {
	Data chan types.Result
}

func NewRun() Run {
	return Run{Data: make(chan types.Result)}
}

type BaseModule struct {
	Metadata
	Options         []*types.Option
	OutputProviders []types.OutputProvider
	Run             Run
}

func (m *BaseModule) GetOptionByName(name string) *types.Option {
	return options.GetOptionByName(name, m.Options)
}

func (m *BaseModule) MakeResult(data any, opts ...types.ResultOption) types.Result {
	return types.NewResult(m.Platform, m.Id, data, opts...)
}

func (m *BaseModule) GetOutputProviders() []types.OutputProvider {
	return m.OutputProviders
}

func (m *BaseModule) ConfigureOutputProviders(providers types.OutputProviders) {
	for _, p := range providers {
		m.OutputProviders = append(m.OutputProviders, p(m.Options))
	}
}
