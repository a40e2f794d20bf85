package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soltixdb/trendscope/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV_Default(t *testing.T) {
	csvData := `Timestamp,Values
2024-01-01 00:00:00,10
2024-01-01 00:00:01,25
2024-01-01 00:00:02,5
2024-01-01 00:00:03,30`

	series, err := LoadCSV(strings.NewReader(csvData), DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 25, 5, 30}, series.Values())
}

func TestLoadCSV_CustomColumnsAndExtraFields(t *testing.T) {
	csvData := `id;when;reading;unit
a;2024-01-02T00:00:00Z;2.5;V
b;2024-01-01T00:00:00Z;1.5;V`

	opts := CSVOptions{
		Columns:   Columns{Timestamp: "when", Value: "reading"},
		Delimiter: ';',
	}

	series, err := LoadCSV(strings.NewReader(csvData), opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, series.Values())
}

func TestLoadCSV_HeaderOnly(t *testing.T) {
	series, err := LoadCSV(strings.NewReader("Timestamp,Values\n"), DefaultCSVOptions())
	require.NoError(t, err)
	assert.Empty(t, series)

	series, err = LoadCSV(strings.NewReader(""), DefaultCSVOptions())
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestLoadCSV_MissingColumn(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("Timestamp,Voltage\n2024-01-01,1\n"), DefaultCSVOptions())
	require.Error(t, err)

	var mre *analytics.MalformedRowError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, "Values", mre.Field)
}

func TestLoadCSV_MalformedValueAborts(t *testing.T) {
	csvData := `Timestamp,Values
2024-01-01,1
2024-01-02,
2024-01-03,3`

	_, err := LoadCSV(strings.NewReader(csvData), DefaultCSVOptions())
	require.Error(t, err)

	var mre *analytics.MalformedRowError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, 1, mre.Row)
	assert.Equal(t, "Values", mre.Field)
}

func TestLoadCSV_ShortRecord(t *testing.T) {
	csvData := "Timestamp,Values\n2024-01-01\n"

	_, err := LoadCSV(strings.NewReader(csvData), DefaultCSVOptions())
	assert.ErrorIs(t, err, analytics.ErrMalformedRow)
}

func TestLoadCSV_QuotedHeaderAndBOM(t *testing.T) {
	inputs := []string{
		"\"Timestamp\",\"Values\"\n2024-01-01,4\n",
		"\ufeffTimestamp,Values\n2024-01-01,4\n",
	}

	for _, in := range inputs {
		series, err := LoadCSV(strings.NewReader(in), DefaultCSVOptions())
		require.NoError(t, err)
		assert.Equal(t, []float64{4}, series.Values())
	}
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte("Timestamp,Values\n2024-01-01,7\n"), 0o644))

	series, err := LoadCSVFile(path, DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, series.Values())

	_, err = LoadCSVFile(filepath.Join(t.TempDir(), "missing.csv"), DefaultCSVOptions())
	assert.Error(t, err)
}
