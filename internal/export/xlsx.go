package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/soltixdb/trendscope/internal/analytics/pipeline"
)

const summarySheet = "summary"

// XLSX writes a workbook with a summary sheet and one sheet per table
func XLSX(w io.Writer, tables []pipeline.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", "Result set")
	_ = f.SetCellValue(summarySheet, "B1", "Rows")
	for i, t := range tables {
		row := i + 2
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), t.Name)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), t.Len())
	}

	for _, t := range tables {
		if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("xlsx sheet %s: %w", t.Name, err)
		}
		if err := writeSheet(f, t); err != nil {
			return fmt.Errorf("xlsx sheet %s: %w", t.Name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, t pipeline.Table) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
