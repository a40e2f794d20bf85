package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/soltixdb/trendscope/internal/analytics"
	"github.com/soltixdb/trendscope/internal/analytics/filter"
	"github.com/soltixdb/trendscope/internal/analytics/pipeline"
)

func runSample(t *testing.T, windows ...int) (*pipeline.Result, analytics.Series) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := analytics.Series{
		{Time: base, Value: 10},
		{Time: base.Add(time.Minute), Value: 25},
		{Time: base.Add(2 * time.Minute), Value: 5},
		{Time: base.Add(3 * time.Minute), Value: 30},
	}
	res, err := pipeline.Run(context.Background(), series, pipeline.Config{
		Threshold:            filter.LessThan(20),
		MovingAverageWindows: windows,
	})
	require.NoError(t, err)
	return res, series
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"XLSX", FormatXLSX, false},
		{" pdf ", FormatPDF, false},
		{"csv", FormatCSV, false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}

func TestTables(t *testing.T) {
	res, series := runSample(t, 2)

	tables := Tables(res, series)
	require.Len(t, tables, 5)
	for i, name := range pipeline.SetNames {
		assert.Equal(t, name, tables[i].Name)
	}
	assert.Equal(t, "trend", tables[4].Name)

	res, series = runSample(t)
	assert.Len(t, Tables(res, series), 4)

	_, ok := FindTable(tables, "low_values")
	assert.True(t, ok)
	_, ok = FindTable(tables, "missing")
	assert.False(t, ok)
}

func TestCSV(t *testing.T) {
	res, series := runSample(t, 2)
	trend, _ := FindTable(Tables(res, series), "trend")

	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, trend))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"time", "value", "ma_2"}, records[0])
	assert.Equal(t, []string{"2024-01-01T00:00:00Z", "10", ""}, records[1])
	assert.Equal(t, []string{"2024-01-01T00:01:00Z", "25", "17.5"}, records[2])
}

func TestCSV_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, pipeline.Table{Name: "peaks", Columns: []string{"time", "value"}}))
	assert.Equal(t, "time,value\n", buf.String())
}

func TestXLSX(t *testing.T) {
	res, series := runSample(t, 2)

	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, Tables(res, series)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"summary", "peaks", "lows", "low_values", "accelerating_decline", "trend"}, f.GetSheetList())

	rows, err := f.GetRows("low_values")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"time", "value"}, rows[0])
	assert.Equal(t, "10", rows[1][1])
	assert.Equal(t, "5", rows[2][1])

	count, err := f.GetCellValue("summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestPDF(t *testing.T) {
	res, series := runSample(t, 2)

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, "Analysis report", Tables(res, series)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDF_TruncatesLongTables(t *testing.T) {
	rows := make([][]interface{}, MaxPDFRows+10)
	for i := range rows {
		rows[i] = []interface{}{"t", float64(i)}
	}
	table := pipeline.Table{Name: "trend", Columns: []string{"time", "value"}, Rows: rows}

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, "Long", []pipeline.Table{table}))
	assert.NotZero(t, buf.Len())
}
