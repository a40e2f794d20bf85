package loader

import (
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIterator struct {
	records []*query.FluxRecord
	pos     int
	err     error
	closed  bool
}

func (f *fakeIterator) Next() bool {
	if f.pos >= len(f.records) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeIterator) Record() *query.FluxRecord { return f.records[f.pos-1] }
func (f *fakeIterator) Err() error                { return f.err }
func (f *fakeIterator) Close() error {
	f.closed = true
	return nil
}

func TestCollectRows(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	it := &fakeIterator{records: []*query.FluxRecord{
		query.NewFluxRecord(0, map[string]interface{}{"_time": base.Add(time.Minute), "_value": 2.0, "_field": "voltage"}),
		query.NewFluxRecord(0, map[string]interface{}{"_time": base, "_value": int64(1)}),
	}}

	rows, err := collectRows(it)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, it.closed)
	assert.NotContains(t, rows[0], "_field")

	series, err := Load(rows, InfluxColumns())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, series.Values())
}

func TestCollectRows_Error(t *testing.T) {
	it := &fakeIterator{err: errors.New("stream broken")}

	_, err := collectRows(it)
	assert.ErrorContains(t, err, "stream broken")
	assert.True(t, it.closed)
}

func TestInfluxQuery(t *testing.T) {
	q := InfluxQuery{Bucket: "metrics", Measurement: "battery", Field: "voltage", Range: "-24h"}
	require.NoError(t, q.Validate())

	flux := q.Flux()
	assert.Contains(t, flux, `from(bucket: "metrics")`)
	assert.Contains(t, flux, "range(start: -24h)")
	assert.Contains(t, flux, `r._measurement == "battery" and r._field == "voltage"`)

	assert.Error(t, InfluxQuery{Measurement: "m", Field: "f", Range: "-1h"}.Validate())
	assert.Error(t, InfluxQuery{Bucket: "b", Field: "f", Range: "-1h"}.Validate())
	assert.Error(t, InfluxQuery{Bucket: "b", Measurement: "m", Range: "-1h"}.Validate())
	assert.Error(t, InfluxQuery{Bucket: "b", Measurement: "m", Field: "f"}.Validate())
}

func TestInfluxQuery_RangeMustBeDuration(t *testing.T) {
	base := InfluxQuery{Bucket: "metrics", Measurement: "battery", Field: "voltage"}

	for _, r := range []string{"-24h", "-1h30m", "-7d", "-2w", "-1mo", "-500ms", "-10µs", "30m"} {
		q := base
		q.Range = r
		assert.NoError(t, q.Validate(), r)
	}

	for _, r := range []string{
		"-1h) |> yield(name: \"x\")\nfrom(bucket: \"secrets\") |> range(start: -100y",
		"-1h)",
		"now()",
		"-h",
		"-1x",
		"2024-01-01T00:00:00Z",
		" -1h",
	} {
		q := base
		q.Range = r
		assert.Error(t, q.Validate(), r)
	}
}

func TestInfluxQuery_RejectsInterpolationInNames(t *testing.T) {
	valid := InfluxQuery{Bucket: "metrics", Measurement: "battery", Field: "voltage", Range: "-1h"}

	q := valid
	q.Bucket = `${secrets}`
	assert.Error(t, q.Validate())

	q = valid
	q.Measurement = "battery${x}"
	assert.Error(t, q.Validate())

	q = valid
	q.Field = "voltage\n|> drop()"
	assert.Error(t, q.Validate())

	q = valid
	q.Field = `quote"d`
	require.NoError(t, q.Validate())
	assert.Contains(t, q.Flux(), `r._field == "quote\"d"`)
}
