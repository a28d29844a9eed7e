package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render creates a PDF document with an optional title, the table body and footer lines.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, "Generated "+e.now().UTC().Format(time.RFC1123), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	colWidth := 277.0 / float64(len(data.Headers))
	writeHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-15 {
			pdf.AddPage()
			writeHeader()
		}
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(data.Footer) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		for _, line := range data.Footer {
			pdf.MultiCell(0, 5, line, "", "L", false)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
