// Package export renders analysis result sets as CSV, XLSX and PDF documents.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soltixdb/trendscope/internal/analytics"
	"github.com/soltixdb/trendscope/internal/analytics/pipeline"
)

// Format is an output document type
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat parses a format name, case-insensitively. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: json, csv, xlsx, pdf)", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Extension returns the file extension, dot included
func (f Format) Extension() string {
	return "." + string(f)
}

// Tables returns the result sets in presentation order, followed by the
// trend table when moving averages were computed and series is known.
func Tables(result *pipeline.Result, series analytics.Series) []pipeline.Table {
	tables := result.OrderedSets()
	if len(result.MovingAverages) > 0 && len(series) > 0 {
		tables = append(tables, result.TrendTable(series))
	}
	return tables
}

// FindTable returns the table with the given name
func FindTable(tables []pipeline.Table, name string) (pipeline.Table, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return pipeline.Table{}, false
}

// formatCell renders a table cell as text; nil cells are empty
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
