package outputproviders

import (
	"encoding/csv"
	"log/slog"
	"os"

	"github.com/entrascan/entrascan/internal/message"
	o "github.com/entrascan/entrascan/pkg/options"
	"github.com/entrascan/entrascan/pkg/types"
)

// CsvFileProvider writes results whose Data is a [][]string record set,
// header row included.
type CsvFileProvider struct {
	OutputPath string
}

func NewCsvFileProvider(opts []*types.Option) types.OutputProvider {
	return &CsvFileProvider{
		OutputPath: o.GetOptionByName(o.OutputOpt.Name, opts).Value,
	}
}

func (fp *CsvFileProvider) Write(result types.Result) error {
	records, ok := result.Data.([][]string)
	if !ok {
		slog.Debug("CSV provider skipping non-record result")
		return nil
	}

	filename := result.Filename
	if filename == "" {
		filename = DefaultFileName(result.Module, "csv")
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

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return err
	}

	message.Success("Output written to %s", fullpath)
	return nil
}
