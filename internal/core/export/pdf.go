package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// pageBreakY is where a new A4 portrait page starts, in mm
const pageBreakY = 270

// PDFExporter implements PDF export using gofpdf
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Export exports data to PDF format
func (p *PDFExporter) Export(data *ExportData, writer io.Writer) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("no headers provided")
	}

	orientation := "P"
	if data.Style.Orientation == "landscape" {
		orientation = "L"
	}
	pageSize := data.Style.PageSize
	if pageSize == "" {
		pageSize = "A4"
	}
	fontSize := data.Style.FontSize
	if fontSize <= 0 {
		fontSize = 9
	}

	// Core fonts only; custom families fall back to Arial
	const fontFamily = "Arial"

	pdf := gofpdf.New(orientation, "mm", pageSize, "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont(fontFamily, "B", 16)
		pdf.Cell(0, 10, tr(data.Title))
		pdf.Ln(12)
	}

	if data.Description != "" {
		pdf.SetFont(fontFamily, "", fontSize)
		pdf.MultiCell(0, 5, tr(data.Description), "", "", false)
		pdf.Ln(4)
	}

	if !data.CreatedAt.IsZero() {
		pdf.SetFont(fontFamily, "I", 8)
		pdf.Cell(0, 5, fmt.Sprintf("Generated: %s", data.CreatedAt.Format("2006-01-02 15:04")))
		pdf.Ln(8)
	}

	if len(data.Summary) > 0 {
		for _, line := range data.Summary {
			pdf.SetFont(fontFamily, "B", fontSize)
			pdf.CellFormat(45, 6, tr(line.Label), "", 0, "L", false, 0, "")
			pdf.SetFont(fontFamily, "", fontSize)
			pdf.CellFormat(0, 6, tr(line.Value), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	pageWidth, _ := pdf.GetPageSize()
	leftMargin, _, rightMargin, _ := pdf.GetMargins()
	colWidth := (pageWidth - leftMargin - rightMargin) / float64(len(data.Headers))

	drawHeader := func() {
		pdf.SetFont(fontFamily, "B", fontSize)
		fill := data.Style.HeaderBgColor != ""
		if fill {
			r, g, b := hexToRGB(data.Style.HeaderBgColor)
			pdf.SetFillColor(r, g, b)
			pdf.SetTextColor(255, 255, 255)
		}
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(header), "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(fontFamily, "", fontSize)
	}

	drawHeader()

	for rowIdx, row := range data.Rows {
		if data.Style.AlternateRows {
			color := data.Style.RowBgColor1
			if rowIdx%2 == 1 {
				color = data.Style.RowBgColor2
			}
			r, g, b := hexToRGB(color)
			pdf.SetFillColor(r, g, b)
		}

		for _, value := range row {
			align := "L"
			if isNumeric(value) {
				align = "R"
			}
			pdf.CellFormat(colWidth, 6, tr(truncate(cellText(value), 40)), "1", 0, align, data.Style.AlternateRows, 0, "")
		}
		pdf.Ln(-1)

		if pdf.GetY() > pageBreakY && rowIdx < len(data.Rows)-1 {
			pdf.AddPage()
			drawHeader()
		}
	}

	if err := pdf.Output(writer); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	return nil
}

// GetContentType returns the MIME type for PDF files
func (p *PDFExporter) GetContentType() string {
	return "application/pdf"
}

// GetFileExtension returns the file extension for PDF files
func (p *PDFExporter) GetFileExtension() string {
	return ".pdf"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// hexToRGB converts hex color to RGB values, white when invalid
func hexToRGB(hex string) (int, int, int) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 255, 255, 255
	}

	var r, g, b int
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return r, g, b
}
