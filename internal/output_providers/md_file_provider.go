package outputproviders

import (
	"log/slog"
	"os"

	"github.com/entrascan/entrascan/internal/message"
	o "github.com/entrascan/entrascan/pkg/options"
	"github.com/entrascan/entrascan/pkg/types"
)

type MarkdownFileProvider struct {
	OutputPath string
}

func NewMarkdownFileProvider(opts []*types.Option) types.OutputProvider {
	return &MarkdownFileProvider{
		OutputPath: o.GetOptionByName(o.OutputOpt.Name, opts).Value,
	}
}

func (fp *MarkdownFileProvider) Write(result types.Result) error {
	table, ok := result.Data.(types.MarkdownTable)
	if !ok {
		slog.Debug("markdown provider skipping non-table result")
		return nil
	}

	filename := result.Filename
	if filename == "" {
		filename = DefaultFileName(result.Module, "md")
	}
	fullpath := GetFullPath(filename, fp.OutputPath)
	if err := ensureDir(fullpath); err != nil {
		return err
	}

	file, err := os.Create(fullpath)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteString(table.ToString()); err != nil {
		return err
	}

	message.Success("Output written to %s", fullpath)
	return nil
}
