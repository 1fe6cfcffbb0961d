package export

import (
	"bytes"
	"fmt"
	"time"
)

// Service provides high-level export functionality
type Service struct {
	exporters map[ExportFormat]Exporter
}

// NewService creates a new export service
func NewService() *Service {
	return &Service{
		exporters: map[ExportFormat]Exporter{
			FormatPDF:   NewPDFExporter(),
			FormatExcel: NewExcelExporter("Transactions"),
			FormatCSV:   NewCSVExporter(),
		},
	}
}

// Export renders data in the given format and returns the bytes with their content type
func (s *Service) Export(data *ExportData, format ExportFormat) ([]byte, string, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, "", fmt.Errorf("unsupported export format: %s", format)
	}

	var buf bytes.Buffer
	if err := exporter.Export(data, &buf); err != nil {
		return nil, "", fmt.Errorf("%s export failed: %w", format, err)
	}

	return buf.Bytes(), exporter.GetContentType(), nil
}

// FileName builds a download name like "sokotally-transactions-2026-03-18.xlsx"
func (s *Service) FileName(base string, format ExportFormat, at time.Time) string {
	ext := ".bin"
	if exporter, ok := s.exporters[format]; ok {
		ext = exporter.GetFileExtension()
	}
	return fmt.Sprintf("%s-%s%s", base, at.Format("2006-01-02"), ext)
}
