package outputproviders

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/entrascan/entrascan/internal/message"
	o "github.com/entrascan/entrascan/pkg/options"
	"github.com/entrascan/entrascan/pkg/types"
)

type JsonFileProvider struct {
	OutputPath string
	FileName   string
}

func NewJsonFileProvider(opts []*types.Option) types.OutputProvider {
	fp := &JsonFileProvider{
		OutputPath: o.GetOptionByName(o.OutputOpt.Name, opts).Value,
	}
	// --filename is only registered by single-artifact modules.
	if opt := o.GetOptionByName(o.FileNameOpt.Name, opts); opt != nil {
		fp.FileName = opt.Value
	}
	return fp
}

func (fp *JsonFileProvider) Write(result types.Result) error {
	switch result.Data.(type) {
	case types.MarkdownTable, [][]string:
		// Tables and CSV records belong to the other providers.
		slog.Debug("JSON provider skipping non-JSON result")
		return nil
	}

	filename := fp.FileName
	if filename == "" {
		filename = result.Filename
	}
	if filename == "" {
		filename = DefaultFileName(result.Module, "json")
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

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result.Data); err != nil {
		return err
	}

	message.Success("Output written to %s", fullpath)
	return nil
}
