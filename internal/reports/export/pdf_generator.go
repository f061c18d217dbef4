package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFGenerator renders report tables as landscape A4 documents.
type PDFGenerator struct {
	options PDFOptions
}

// PDFOptions configures PDF report rendering.
type PDFOptions struct {
	Title         string   `json:"title"`
	Orientation   string   `json:"orientation"`
	FontSize      float64  `json:"font_size"`
	TitleFontSize float64  `json:"title_font_size"`
	HeaderColor   PDFColor `json:"header_color"`
	AlternateRows bool     `json:"alternate_rows"`
	IncludeDate   bool     `json:"include_date"`
}

// PDFColor is an RGB color.
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DefaultPDFOptions returns default PDF rendering options.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Orientation:   "landscape",
		FontSize:      9,
		TitleFontSize: 14,
		HeaderColor:   PDFColor{R: 68, G: 114, B: 196},
		AlternateRows: true,
		IncludeDate:   true,
	}
}

func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	return &PDFGenerator{options: options}
}

// WriteTable renders the table and writes the PDF to w. Column widths are
// sized from the content and scaled down to fit the page.
func (g *PDFGenerator) WriteTable(w io.Writer, columns []string, rows [][]string) error {
	orientation := "L"
	if g.options.Orientation == "portrait" {
		orientation = "P"
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if g.options.Title != "" {
		pdf.SetFont("Arial", "B", g.options.TitleFontSize)
		pdf.CellFormat(0, 10, tr(g.options.Title), "", 1, "C", false, 0, "")
	}
	if g.options.IncludeDate {
		pdf.SetFont("Arial", "", g.options.FontSize-1)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Gerado em %s", time.Now().Format("02/01/2006 15:04"))), "", 1, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	widths := g.columnWidths(pdf, tr, columns, rows)

	pdf.SetFont("Arial", "B", g.options.FontSize+1)
	pdf.SetFillColor(g.options.HeaderColor.R, g.options.HeaderColor.G, g.options.HeaderColor.B)
	pdf.SetTextColor(255, 255, 255)
	for i, col := range columns {
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", g.options.FontSize)
	pdf.SetTextColor(0, 0, 0)
	for rowIdx, row := range rows {
		fill := g.options.AlternateRows && rowIdx%2 == 1
		if fill {
			pdf.SetFillColor(242, 242, 242)
		}
		for i, value := range row {
			if i >= len(widths) {
				break
			}
			pdf.CellFormat(widths[i], 7, tr(value), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.Err() {
		return fmt.Errorf("failed to render report: %v", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (g *PDFGenerator) columnWidths(pdf *gofpdf.Fpdf, tr func(string) string, columns []string, rows [][]string) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	available := pageWidth - left - right

	pdf.SetFont("Arial", "B", g.options.FontSize+1)
	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = pdf.GetStringWidth(tr(col)) + 4
	}

	pdf.SetFont("Arial", "", g.options.FontSize)
	sample := len(rows)
	if sample > 100 {
		sample = 100
	}
	for _, row := range rows[:sample] {
		for i, value := range row {
			if i >= len(widths) {
				break
			}
			if w := pdf.GetStringWidth(tr(value)) + 4; w > widths[i] {
				widths[i] = w
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total > available {
		scale := available / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}
