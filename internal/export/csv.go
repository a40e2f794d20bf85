package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/soltixdb/trendscope/internal/analytics/pipeline"
)

// CSV writes one table with a header row
func CSV(w io.Writer, t pipeline.Table) error {
	bufferedWriter := bufio.NewWriterSize(w, 64*1024)
	csvWriter := csv.NewWriter(bufferedWriter)

	if err := csvWriter.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = formatCell(row[i])
			}
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return bufferedWriter.Flush()
}
