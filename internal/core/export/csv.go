package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVExporter writes the title and summary rows, a blank row, then the table
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export exports data to CSV format
func (c *CSVExporter) Export(data *ExportData, writer io.Writer) error {
	w := csv.NewWriter(writer)

	if data.Title != "" {
		if err := w.Write([]string{data.Title}); err != nil {
			return err
		}
	}
	for _, line := range data.Summary {
		if err := w.Write([]string{line.Label, line.Value}); err != nil {
			return err
		}
	}
	if data.Title != "" || len(data.Summary) > 0 {
		if err := w.Write([]string{}); err != nil {
			return err
		}
	}

	if err := w.Write(data.Headers); err != nil {
		return err
	}
	for _, row := range data.Rows {
		record := make([]string, len(row))
		for i, value := range row {
			record[i] = cellText(value)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func (c *CSVExporter) GetContentType() string {
	return "text/csv; charset=utf-8"
}

func (c *CSVExporter) GetFileExtension() string {
	return ".csv"
}
