package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBatch_RecordsEachFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	// Same basename in different directories
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	require.NoError(t, os.MkdirAll(d1, 0o755))
	require.NoError(t, os.MkdirAll(d2, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d1, "ibes.csv"), []byte(ibesCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(d2, "ibes.csv"), []byte(ibesCSV), 0o644))

	runCmd(t, "init", "batch", "-d", "batch workspace")
	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "ibes.csv"), "-w", "batch", "--sample-rows", "0")
	assert.Contains(t, out, "[1/2] Processing ibes.csv...")
	assert.Contains(t, out, "[2/2] Processing ibes.csv...")

	ws, err := openWorkspace("batch")
	require.NoError(t, err)
	require.Len(t, ws.Runs, 2)
	reports := map[string]bool{}
	for _, r := range ws.SortedRuns() {
		reports[r.ReportPath] = true
		body, err := os.ReadFile(r.ReportPath)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "[HEAD OF CLEANED DATA]")
	}
	assert.Len(t, reports, 2, "runs must not overwrite each other's reports")
}

func TestAnalyzeBatch_KeepGoing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	good := filepath.Join(home, "a.csv")
	bad := filepath.Join(home, "b.csv")
	require.NoError(t, os.WriteFile(good, []byte(ibesCSV), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("TICKER,VALUE\nA,1\n"), 0o644))

	_, err := execCmd(t, "analyze-batch", good, bad, "--quiet")
	require.Error(t, err, "without --keep-going the first failure stops the batch")

	out, err := execCmd(t, "analyze-batch", bad, good, "--keep-going")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "1 of 2 file(s) failed"))
	assert.Contains(t, out, "[FORECAST ERROR BY YEAR]")
}

func TestExpandInputsDedupesAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x\n"), 0o644))
	}
	got := expandInputs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv"), filepath.Join(dir, "missing.csv")})
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, got)
}
