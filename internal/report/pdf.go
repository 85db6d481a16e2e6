package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Painter renders a narrative onto a paginated binary document. The
// compiler treats PDF rendering as an injected capability so tests can
// substitute a recording fake.
type Painter interface {
	// Paint renders the title, a metadata block, and the body lines, and
	// returns the encoded document.
	Paint(title string, metaLines []string, bodyLines []string) ([]byte, error)
}

// PDFPainter paints narratives with gofpdf: A4 portrait, header lines at a
// larger font, and automatic page breaks when the vertical cursor would
// run past the usable height.
type PDFPainter struct{}

// NewPDFPainter creates a PDFPainter.
func NewPDFPainter() *PDFPainter {
	return &PDFPainter{}
}

// Paint implements Painter.
func (p *PDFPainter) Paint(title string, metaLines []string, bodyLines []string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Arial", "I", 9)
	for _, line := range metaLines {
		pdf.Cell(40, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	for _, line := range bodyLines {
		paintLine(pdf, strings.ReplaceAll(line, "**", ""))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// paintLine renders one narrative line. Header lines get a bold font
// scaled to their level; everything else wraps as body text.
func paintLine(pdf *gofpdf.Fpdf, line string) {
	switch {
	case strings.HasPrefix(line, "### "):
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(40, 7, strings.TrimPrefix(line, "### "))
		pdf.Ln(7)
	case strings.HasPrefix(line, "## "):
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, strings.TrimPrefix(line, "## "))
		pdf.Ln(8)
	case strings.HasPrefix(line, "# "):
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 9, strings.TrimPrefix(line, "# "))
		pdf.Ln(9)
	case strings.TrimSpace(line) == "":
		pdf.Ln(4)
	default:
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}
