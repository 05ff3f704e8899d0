package cleaner

import (
	"os"
	"path/filepath"
	"testing"

	"datamend/internal"
	"datamend/internal/errors"
	"datamend/internal/impute"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOperationsBeforeLoad(t *testing.T) {
	c := New("nowhere.csv", testLogger())

	assert.Empty(t, c.AnalyzeMissingData())
	assert.Empty(t, c.ColumnStats())
	assert.False(t, c.KnnRecommendation().Recommended)

	_, err := c.Clean("mean", nil, impute.DefaultParams())
	assert.Equal(t, errors.CodeNoDataLoaded, errors.GetCode(err))

	_, err = c.Save("")
	assert.Equal(t, errors.CodeNoDataLoaded, errors.GetCode(err))
}

func TestLoadUnsupportedAndMissingFiles(t *testing.T) {
	err := New("data.parquet", testLogger()).Load()
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))

	err = New(filepath.Join(t.TempDir(), "absent.csv"), testLogger()).Load()
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}

func TestCleanRejectsUnknownMethod(t *testing.T) {
	c := New(writeCSV(t, "v\n1\n\n3\n"), testLogger())
	require.NoError(t, c.Load())

	_, err := c.Clean("interpolate", nil, impute.DefaultParams())
	assert.Equal(t, errors.CodeInvalidMethod, errors.GetCode(err))
	assert.Nil(t, c.Cleaned())
}

func TestCleanMeanRoundTrip(t *testing.T) {
	path := writeCSV(t, "v,label\n1,a\n,b\n3,a\n")
	c := New(path, testLogger())
	require.NoError(t, c.Load())

	report := c.AnalyzeMissingData()
	assert.Equal(t, map[string]int{"v": 1, "label": 0}, report)
	assert.Equal(t, report, c.AnalyzeMissingData(), "analysis must be idempotent")

	cleaned, err := c.Clean("mean", nil, impute.DefaultParams())
	require.NoError(t, err)
	col, ok := cleaned.Column("v")
	require.True(t, ok)
	assert.Equal(t, 2.0, col.Values[1].Num)

	// Default output path carries the _cleaned suffix.
	resolved, err := c.Save("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data_cleaned.csv"), resolved)

	// load(save(clean(load(path)))) keeps names and values.
	reloaded := New(resolved, testLogger())
	require.NoError(t, reloaded.Load())
	assert.Equal(t, []string{"v", "label"}, reloaded.Table().ColumnNames())
	got, ok := reloaded.Table().Column("v")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, []float64{got.Values[0].Num, got.Values[1].Num, got.Values[2].Num})
	assert.Equal(t, 0, got.MissingCount())
}

func TestSaveAcrossFormats(t *testing.T) {
	c := New(writeCSV(t, "v\n1\n\n3\n"), testLogger())
	require.NoError(t, c.Load())
	_, err := c.Clean("median", nil, impute.DefaultParams())
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.xlsx"} {
		resolved, err := c.Save(filepath.Join(dir, name))
		require.NoError(t, err, name)

		reloaded := New(resolved, testLogger())
		require.NoError(t, reloaded.Load(), name)
		col, ok := reloaded.Table().Column("v")
		require.True(t, ok, name)
		assert.Equal(t, 0, col.MissingCount(), name)
		assert.Equal(t, 2.0, col.Values[1].Num, name)
	}

	_, err = c.Save(filepath.Join(dir, "out.parquet"))
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
}

func TestKnnRecommendationThroughFacade(t *testing.T) {
	c := New(writeCSV(t, "v\n1\n2\n3\n"), testLogger())
	require.NoError(t, c.Load())

	rec := c.KnnRecommendation()
	assert.False(t, rec.Recommended)
	assert.Equal(t, "no missing values in numeric columns", rec.Reason)
}
