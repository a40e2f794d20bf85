package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/soltixdb/trendscope/internal/analytics"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	Columns    Columns        // Header names of the timestamp and value columns
	TimeLayout string         // Extra timestamp layout tried first (optional)
	Location   *time.Location // Zone for timestamps without offset (default: UTC)
	Delimiter  rune           // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Columns:   DefaultColumns(),
		Delimiter: ',',
	}
}

// LoadCSVFile loads a series from a CSV file.
func LoadCSVFile(filename string, opts CSVOptions) (analytics.Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	return LoadCSV(file, opts)
}

// LoadCSV reads a header row followed by data rows and loads them through
// Load. Row numbers in errors count data rows from 0; a header missing a
// configured column is reported against row 0.
func LoadCSV(r io.Reader, opts CSVOptions) (analytics.Series, error) {
	rows, err := ReadCSVRows(r, opts)
	if err != nil {
		return nil, err
	}

	var loadOpts []Option
	if opts.TimeLayout != "" {
		loadOpts = append(loadOpts, WithTimeLayout(opts.TimeLayout))
	}
	if opts.Location != nil {
		loadOpts = append(loadOpts, WithLocation(opts.Location))
	}
	return Load(rows, opts.Columns, loadOpts...)
}

// ReadCSVRows reads the CSV into rows keyed by header name. Only the
// configured timestamp and value columns are kept.
func ReadCSVRows(r io.Reader, opts CSVOptions) ([]Row, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if err := opts.Columns.Validate(); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	timeIdx, valueIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(strings.TrimPrefix(h, "\ufeff"), "\""))
		switch h {
		case opts.Columns.Timestamp:
			timeIdx = i
		case opts.Columns.Value:
			valueIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, &analytics.MalformedRowError{Row: 0, Field: opts.Columns.Timestamp, Err: errors.New("column not found in header")}
	}
	if valueIdx < 0 {
		return nil, &analytics.MalformedRowError{Row: 0, Field: opts.Columns.Value, Err: errors.New("column not found in header")}
	}

	rows := []Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &analytics.MalformedRowError{Row: len(rows), Field: "", Err: err}
		}

		row := Row{}
		if timeIdx < len(record) {
			row[opts.Columns.Timestamp] = record[timeIdx]
		}
		if valueIdx < len(record) {
			row[opts.Columns.Value] = record[valueIdx]
		}
		rows = append(rows, row)
	}

	return rows, nil
}
