package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/soltixdb/trendscope/internal/analytics/pipeline"
)

// MaxPDFRows caps the rows printed per table
const MaxPDFRows = 500

const (
	pdfRowHeight   = 6.0
	pdfTableWidth  = 180.0
	pdfHeaderColor = 220
)

// PDF writes a report with one table per result set. Tables longer than
// MaxPDFRows are truncated with a note.
func PDF(w io.Writer, title string, tables []pipeline.Table) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, title)
	pdf.Ln(12)

	for _, t := range tables {
		writePDFTable(pdf, t)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf write: %w", err)
	}
	return nil
}

func writePDFTable(pdf *gofpdf.Fpdf, t pipeline.Table) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("%s (%d rows)", strings.ReplaceAll(t.Name, "_", " "), t.Len()))
	pdf.Ln(8)

	if len(t.Columns) == 0 {
		return
	}
	width := pdfTableWidth / float64(len(t.Columns))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(pdfHeaderColor, pdfHeaderColor, pdfHeaderColor)
	for _, c := range t.Columns {
		pdf.CellFormat(width, pdfRowHeight, c, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, row := range t.Rows {
		if i == MaxPDFRows {
			pdf.Cell(0, pdfRowHeight, fmt.Sprintf("... %d more rows", t.Len()-MaxPDFRows))
			pdf.Ln(-1)
			break
		}
		for j := range t.Columns {
			var text string
			if j < len(row) {
				text = formatCell(row[j])
			}
			align := "R"
			if j == 0 {
				align = "L"
			}
			pdf.CellFormat(width, pdfRowHeight, text, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}
