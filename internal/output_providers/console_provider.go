package outputproviders

import (
	"fmt"
	"io"
	"os"

	"github.com/entrascan/entrascan/pkg/types"
)

type ConsoleProvider struct {
	out io.Writer
}

func NewConsoleProvider(options []*types.Option) types.OutputProvider {
	return &ConsoleProvider{out: os.Stdout}
}

// Write prints the result's data field to the console. CSV records are left
// to the file provider.
func (cp *ConsoleProvider) Write(result types.Result) error {
	switch data := result.Data.(type) {
	case types.MarkdownTable:
		fmt.Fprintln(cp.out, data.ToString())
	case [][]string:
		return nil
	default:
		fmt.Fprintln(cp.out, result.String())
	}
	return nil
}
