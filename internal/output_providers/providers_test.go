package outputproviders

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	o "github.com/entrascan/entrascan/pkg/options"
	"github.com/entrascan/entrascan/pkg/types"
)

func outputOpts(dir string) []*types.Option {
	return []*types.Option{o.WithDefaultValue(o.OutputOpt, dir)}
}

func TestJsonFileProviderWritesData(t *testing.T) {
	dir := t.TempDir()
	provider := NewJsonFileProvider(outputOpts(dir))

	result := types.NewResult("azure", "shadow-it", map[string]string{"app": "Legacy Mail Sync"},
		types.WithFilename("grants.json"))
	require.NoError(t, provider.Write(result))

	raw, err := os.ReadFile(filepath.Join(dir, "grants.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Legacy Mail Sync")
}

func TestJsonFileProviderHonorsFilenameOverride(t *testing.T) {
	dir := t.TempDir()
	opts := append(outputOpts(dir), o.WithDefaultValue(o.FileNameOpt, "custom.json"))
	provider := NewJsonFileProvider(opts)

	result := types.NewResult("azure", "offboard", map[string]string{"step": "disable account"},
		types.WithFilename("offboard-user-1.json"))
	require.NoError(t, provider.Write(result))

	raw, err := os.ReadFile(filepath.Join(dir, "custom.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "disable account")
}

func TestJsonFileProviderSkipsTablesAndRecords(t *testing.T) {
	dir := t.TempDir()
	provider := NewJsonFileProvider(outputOpts(dir))

	require.NoError(t, provider.Write(types.NewResult("azure", "shadow-it", types.MarkdownTable{})))
	require.NoError(t, provider.Write(types.NewResult("azure", "shadow-it", [][]string{{"a"}})))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCsvFileProviderWritesRecords(t *testing.T) {
	dir := t.TempDir()
	provider := NewCsvFileProvider(outputOpts(dir))

	records := [][]string{{"App", "Risk"}, {"Legacy Mail Sync", "90"}}
	result := types.NewResult("azure", "shadow-it", records, types.WithFilename("grants.csv"))
	require.NoError(t, provider.Write(result))

	raw, err := os.ReadFile(filepath.Join(dir, "grants.csv"))
	require.NoError(t, err)
	assert.Equal(t, "App,Risk\nLegacy Mail Sync,90\n", string(raw))
}

func TestMarkdownFileProviderWritesTable(t *testing.T) {
	dir := t.TempDir()
	provider := NewMarkdownFileProvider(outputOpts(dir))

	table := types.MarkdownTable{
		TableHeading: "Shadow IT Risky Grants",
		Headers:      []string{"App", "Risk"},
		Rows:         [][]string{{"Legacy Mail Sync", "90"}},
	}
	result := types.NewResult("azure", "shadow-it", table, types.WithFilename("report.md"))
	require.NoError(t, provider.Write(result))

	raw, err := os.ReadFile(filepath.Join(dir, "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# Shadow IT Risky Grants")
	assert.Contains(t, string(raw), "| Legacy Mail Sync | 90")
}

func TestConsoleProviderRendersTablesAndData(t *testing.T) {
	var buf bytes.Buffer
	provider := &ConsoleProvider{out: &buf}

	table := types.MarkdownTable{Headers: []string{"App"}, Rows: [][]string{{"Legacy Mail Sync"}}}
	require.NoError(t, provider.Write(types.NewResult("azure", "shadow-it", table)))
	assert.Contains(t, buf.String(), "| Legacy Mail Sync |")

	buf.Reset()
	require.NoError(t, provider.Write(types.NewResult("azure", "offboard", map[string]string{"step": "disable account"})))
	assert.Contains(t, buf.String(), "disable account")

	// CSV records stay out of the console.
	buf.Reset()
	require.NoError(t, provider.Write(types.NewResult("azure", "shadow-it", [][]string{{"a"}})))
	assert.Empty(t, buf.String())
}

func TestDefaultFileName(t *testing.T) {
	name := DefaultFileName("shadow-it", "json")
	assert.Regexp(t, `^shadow-it-[0-9a-f]{10}\.json$`, name)
}
