package loader

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/query"

	"github.com/soltixdb/trendscope/internal/analytics"
)

const (
	influxTimeColumn  = "_time"
	influxValueColumn = "_value"
)

// fluxDuration matches a Flux duration literal such as "-24h" or "-1h30m"
var fluxDuration = regexp.MustCompile(`^-?(\d+(ns|us|µs|ms|s|mo|m|h|d|w|y))+$`)

// InfluxColumns are the Flux record columns a series is read from.
func InfluxColumns() Columns {
	return Columns{Timestamp: influxTimeColumn, Value: influxValueColumn}
}

// InfluxQuery selects one field of one measurement over a relative range.
type InfluxQuery struct {
	Bucket      string
	Measurement string
	Field       string
	Range       string // Flux duration, e.g. "-24h"
}

// Validate checks the query identifies a single series.
func (q InfluxQuery) Validate() error {
	if q.Bucket == "" {
		return errors.New("influx bucket is required")
	}
	if q.Measurement == "" {
		return errors.New("influx measurement is required")
	}
	if q.Field == "" {
		return errors.New("influx field is required")
	}
	if q.Range == "" {
		return errors.New("influx range is required")
	}
	if !fluxDuration.MatchString(q.Range) {
		return fmt.Errorf("influx range %q is not a duration", q.Range)
	}
	for name, v := range map[string]string{"bucket": q.Bucket, "measurement": q.Measurement, "field": q.Field} {
		if err := checkFluxString(v); err != nil {
			return fmt.Errorf("influx %s: %w", name, err)
		}
	}
	return nil
}

// checkFluxString rejects text that a quoted Flux string literal would not
// keep literal: interpolation and control characters.
func checkFluxString(s string) error {
	if strings.Contains(s, "${") {
		return errors.New("interpolation is not allowed")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return errors.New("control characters are not allowed")
		}
	}
	return nil
}

// Flux renders the query. Only the time and value columns are kept and the
// records are sorted by time. Callers must Validate q first.
func (q InfluxQuery) Flux() string {
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %q)\n", q.Bucket)
	fmt.Fprintf(&b, "  |> range(start: %s)\n", q.Range)
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %q and r._field == %q)\n", q.Measurement, q.Field)
	b.WriteString("  |> keep(columns: [\"_time\", \"_value\"])\n")
	b.WriteString("  |> sort(columns: [\"_time\"])")
	return b.String()
}

// recordIterator is the subset of *api.QueryTableResult used to drain a query.
type recordIterator interface {
	Next() bool
	Record() *query.FluxRecord
	Err() error
	Close() error
}

// InfluxSource reads a series from InfluxDB 2.x.
type InfluxSource struct {
	client influxdb2.Client
	org    string
}

// NewInfluxSource creates a source using an existing client.
func NewInfluxSource(client influxdb2.Client, org string) *InfluxSource {
	return &InfluxSource{client: client, org: org}
}

// NewInfluxSourceFromURL creates a client for url/token and wraps it.
func NewInfluxSourceFromURL(url, token, org string) *InfluxSource {
	return NewInfluxSource(influxdb2.NewClient(url, token), org)
}

// Rows runs the query and returns one row per Flux record.
func (s *InfluxSource) Rows(ctx context.Context, q InfluxQuery) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result, err := s.client.QueryAPI(s.org).Query(ctx, q.Flux())
	if err != nil {
		return nil, fmt.Errorf("influx query failed: %w", err)
	}
	return collectRows(result)
}

// Load runs the query and loads the records as a series.
func (s *InfluxSource) Load(ctx context.Context, q InfluxQuery) (analytics.Series, error) {
	rows, err := s.Rows(ctx, q)
	if err != nil {
		return nil, err
	}
	return Load(rows, InfluxColumns())
}

// Ping checks the server is reachable.
func (s *InfluxSource) Ping(ctx context.Context) error {
	ok, err := s.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influx ping: %w", err)
	}
	if !ok {
		return errors.New("influx ping: server not ready")
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSource) Close() {
	s.client.Close()
}

func collectRows(it recordIterator) ([]Row, error) {
	defer func() { _ = it.Close() }()

	rows := []Row{}
	for it.Next() {
		rec := it.Record()
		rows = append(rows, Row{
			influxTimeColumn:  rec.ValueByKey(influxTimeColumn),
			influxValueColumn: rec.ValueByKey(influxValueColumn),
		})
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("influx result: %w", err)
	}
	return rows, nil
}
