package workspace_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/ibesdash/internal/analysis"
	"github.com/KaramelBytes/ibesdash/internal/table"
	"github.com/KaramelBytes/ibesdash/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFixture(t *testing.T) *analysis.Result {
	t.Helper()
	tbl := table.MustNew(
		table.NewCategorical("TICKER", []string{"A", "A", "B", "B"}, nil),
		table.NewNumeric("VALUE", []float64{1, math.NaN(), 1, 1}),
		table.NewNumeric("ACTUAL", []float64{2, 3, 4, 5}),
		table.NewNumeric("ACTDATS", []float64{20200315, 20210102, 20210505, 20220101}),
	)
	res, err := analysis.Run(context.Background(), tbl, analysis.DefaultOptions())
	require.NoError(t, err)
	res.Name = "ibes q1.csv"
	return res
}

func TestRecordSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ws")
	ws := workspace.New("ibes", "quarterly estimates", dir)
	res := runFixture(t)

	run, err := ws.Record("/data/ibes q1.csv", res, 3)
	require.NoError(t, err)
	require.NoError(t, ws.Save())

	assert.Equal(t, res.RunID, run.ID)
	assert.Equal(t, 4, run.RowsRaw)
	assert.True(t, strings.HasPrefix(filepath.Base(run.ReportPath), "ibes_q1-"))

	report, err := os.ReadFile(run.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "[FORECAST ERROR BY YEAR]")

	cleaned, err := os.ReadFile(run.CleanedPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(cleaned), "TICKER,VALUE,ACTUAL,ACTDATS,YEAR,ERROR"))

	loaded, err := workspace.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ibes", loaded.Name)
	require.Len(t, loaded.SortedRuns(), 1)
	assert.Equal(t, run.ID, loaded.SortedRuns()[0].ID)
}

func TestFindAndRemoveRun(t *testing.T) {
	ws := workspace.New("ibes", "", t.TempDir())
	run, err := ws.Record("ibes.csv", runFixture(t), 0)
	require.NoError(t, err)

	got, err := ws.FindRun(run.ID[:6])
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)

	_, err = ws.FindRun("zzz")
	assert.Error(t, err)

	require.NoError(t, ws.Remove(run.ID))
	assert.Empty(t, ws.Runs)
	_, err = os.Stat(run.ReportPath)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadMissingWorkspace(t *testing.T) {
	_, err := workspace.Load(t.TempDir())
	assert.Error(t, err)
}
