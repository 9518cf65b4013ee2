package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportAndHistoryCommands(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(input, []byte(`Date,Measure,Timestamp,BUIDL,OUSG
2024-01-01,Total Asset Value (Dollar),1,500000000,120000000
2024-01-08,Total Asset Value (Dollar),2,520000000,140000000
`), 0o644))

	exportFile := filepath.Join(dir, "out", "observations.csv")
	historyFile := filepath.Join(dir, "out", "history.png")
	common := []string{
		"--input", input,
		"--export-file", exportFile,
		"--history-file", historyFile,
		"--logo", "",
		"--log-dir", filepath.Join(dir, "logs"),
		"--env-file", writeEnv(t, dir),
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)

	rootCmd.SetArgs(append([]string{"export"}, common...))
	require.NoError(t, Execute())
	assert.Equal(t, exportFile, strings.TrimSpace(out.String()))

	data, err := os.ReadFile(exportFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,Fund,Value\n2024-01-01,BUIDL,500000000\n"))

	out.Reset()
	rootCmd.SetArgs(append([]string{"history"}, common...))
	require.NoError(t, Execute())
	assert.FileExists(t, historyFile)
	assert.FileExists(t, filepath.Join(dir, "logs", "app.log"))

	rootCmd.SetArgs(append([]string{"export", "--top-k", "0"}, common...))
	assert.ErrorContains(t, Execute(), "chart.top_k")
}

func writeEnv(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("# no overrides\n"), 0o644))
	return path
}
