package assess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAssessSavesReportFromConfigOutputDir(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "reports")

	source := writeFixture(t, dir, "orders.csv", "order_id,amount\nA-1,10.50\nA-2,20.00\nA-3,15.25\n")
	configPath := writeFixture(t, dir, "adri.yaml",
		"output_dir: "+outDir+"\nmetadata_dir: "+dir+"\n")

	cmd := NewAssessCommand()
	cmd.SetArgs([]string{source, "--config", configPath})
	require.NoError(t, cmd.Execute())

	saved, err := filepath.Glob(filepath.Join(outDir, "adri-report-*.json"))
	require.NoError(t, err)
	assert.Len(t, saved, 1, "an output_dir set only in the config file still persists the report")
}

func TestAssessNoOutputDirWritesNothing(t *testing.T) {
	dir := t.TempDir()
	source := writeFixture(t, dir, "orders.csv", "order_id,amount\nA-1,10.50\nA-2,20.00\n")

	cmd := NewAssessCommand()
	cmd.SetArgs([]string{source, "--metadata-dir", dir})
	require.NoError(t, cmd.Execute())

	saved, err := filepath.Glob(filepath.Join(dir, "adri-report-*"))
	require.NoError(t, err)
	assert.Empty(t, saved)
}
