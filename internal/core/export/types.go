package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatPDF   ExportFormat = "pdf"
	FormatExcel ExportFormat = "excel"
	FormatCSV   ExportFormat = "csv"
)

// ParseFormat accepts pdf, excel (or xlsx) and csv in any casing
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Exporter is the interface for all export formats
type Exporter interface {
	Export(data *ExportData, writer io.Writer) error
	GetContentType() string
	GetFileExtension() string
}

// SummaryLine is a label and value printed above the table, e.g. "Total Income"
type SummaryLine struct {
	Label string
	Value string
}

// ExportData represents the data to be exported
type ExportData struct {
	Title       string
	Description string
	CreatedAt   time.Time

	Summary []SummaryLine

	// Table data
	Headers []string
	Rows    [][]interface{}

	// Styling options
	Style ExportStyle
}

// ExportStyle defines styling options for exports
type ExportStyle struct {
	// PDF specific
	Orientation string // "portrait" or "landscape"
	PageSize    string // "A4", "Letter", etc.

	// Common styling
	HeaderBold    bool
	HeaderBgColor string // Hex color
	AlternateRows bool
	RowBgColor1   string // Hex color for odd rows
	RowBgColor2   string // Hex color for even rows

	// Font settings
	FontFamily string
	FontSize   float64

	// Excel specific
	FreezeHeader bool
	AutoFilter   bool
	ColumnWidths map[int]float64 // Column index -> width
}

// DefaultStyle returns default export styling
func DefaultStyle() ExportStyle {
	return ExportStyle{
		Orientation:   "portrait",
		PageSize:      "A4",
		HeaderBold:    true,
		HeaderBgColor: "#2E7D32",
		AlternateRows: true,
		RowBgColor1:   "#FFFFFF",
		RowBgColor2:   "#F1F8E9",
		FontFamily:    "Arial",
		FontSize:      9,
		FreezeHeader:  true,
		AutoFilter:    true,
		ColumnWidths:  make(map[int]float64),
	}
}

// cellText renders a cell the way text formats (CSV, PDF) print it
func cellText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.2f", v)
	case float32:
		return fmt.Sprintf("%.2f", v)
	case time.Time:
		return v.Format("2006-01-02")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// isNumeric reports whether a cell should be right-aligned
func isNumeric(value interface{}) bool {
	switch value.(type) {
	case int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}
