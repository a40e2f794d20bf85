package pipeline

import (
	"strconv"
	"time"

	"github.com/soltixdb/trendscope/internal/analytics"
	"github.com/soltixdb/trendscope/internal/analytics/smoothing"
)

// Table is a renderer-facing view of a result set: ordered column names and
// one row of values per record.
type Table struct {
	Name    string          `json:"name"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

// Sets returns the four named result sets.
func (r *Result) Sets() map[string]Table {
	return map[string]Table{
		SetPeaks:               sampleTable(SetPeaks, r.Peaks),
		SetLows:                sampleTable(SetLows, r.Lows),
		SetLowValues:           sampleTable(SetLowValues, r.LowValues),
		SetAcceleratingDecline: slopeTable(SetAcceleratingDecline, r.AcceleratingDecline),
	}
}

// OrderedSets returns Sets in SetNames order.
func (r *Result) OrderedSets() []Table {
	sets := r.Sets()
	out := make([]Table, 0, len(SetNames))
	for _, name := range SetNames {
		out = append(out, sets[name])
	}
	return out
}

// TrendTable aligns the source series with its moving averages, one column
// per window in ascending order. Undefined averages are nil cells.
func (r *Result) TrendTable(series analytics.Series) Table {
	windows := smoothing.SortedWindows(r.MovingAverages)

	columns := []string{"time", "value"}
	for _, w := range windows {
		columns = append(columns, "ma_"+strconv.Itoa(w))
	}

	rows := make([][]interface{}, len(series))
	for i, s := range series {
		row := []interface{}{s.Time.Format(time.RFC3339Nano), s.Value}
		for _, w := range windows {
			var cell interface{}
			if ma := r.MovingAverages[w]; i < len(ma) {
				if v, ok := ma[i].Get(); ok {
					cell = v
				}
			}
			row = append(row, cell)
		}
		rows[i] = row
	}

	return Table{Name: "trend", Columns: columns, Rows: rows}
}

func sampleTable(name string, series analytics.Series) Table {
	rows := make([][]interface{}, len(series))
	for i, s := range series {
		rows[i] = []interface{}{s.Time.Format(time.RFC3339Nano), s.Value}
	}
	return Table{Name: name, Columns: []string{"time", "value"}, Rows: rows}
}

func slopeTable(name string, samples []analytics.SlopeSample) Table {
	rows := make([][]interface{}, len(samples))
	for i, s := range samples {
		rows[i] = []interface{}{s.Time.Format(time.RFC3339Nano), s.Value, s.Slope}
	}
	return Table{Name: name, Columns: []string{"time", "value", "slope"}, Rows: rows}
}
