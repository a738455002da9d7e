package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/docsift/docsift/internal/fields"
)

// RenderPDF produces the two-column field/value table. Fields appear in
// declaration order; list-valued fields are flattened to one joined cell.
func RenderPDF(fs *fields.FieldSet) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	// core fonts take cp1252 bytes, so UTF-8 cell text goes through the
	// translator after sanitization
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Extracted Document Data", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	pdf.SetFillColor(200, 220, 255)
	pdf.CellFormat(90, 10, "Field", "1", 0, "C", true, 0, "")
	pdf.CellFormat(100, 10, "Value", "1", 1, "C", true, 0, "")

	rendered := fs.Rendered()
	for _, name := range fs.Names() {
		pdf.CellFormat(90, 10, tr(sanitizeCell(name)), "1", 0, "", false, 0, "")
		pdf.CellFormat(100, 10, tr(sanitizeCell(rendered[name])), "1", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf write: %w", err)
	}
	return buf.Bytes(), nil
}
