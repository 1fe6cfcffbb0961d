package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleData() *ExportData {
	return &ExportData{
		Title:     "Transactions",
		CreatedAt: time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC),
		Summary:   []SummaryLine{{Label: "Total Income", Value: "KES 1,500.00"}},
		Headers:   []string{"Date", "Type", "Description", "Amount", "Customer", "Status"},
		Rows: [][]interface{}{
			{"2026-03-18", "sale", "tomatoes", 1500.0, "John", "paid"},
			{"2026-03-18", "debt", "sugar, rice", 300.5, "", "unpaid"},
		},
		Style: DefaultStyle(),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"excel", FormatExcel, false},
		{"xlsx", FormatExcel, false},
		{"pdf", FormatPDF, false},
		{"docx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSVExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter().Export(sampleData(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Transactions", lines[0])
	assert.Equal(t, `Total Income,"KES 1,500.00"`, lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "Date,Type,Description,Amount,Customer,Status", lines[3])
	assert.Equal(t, "2026-03-18,sale,tomatoes,1500.00,John,paid", lines[4])
	assert.Equal(t, `2026-03-18,debt,"sugar, rice",300.50,,unpaid`, lines[5])
}

func TestExcelExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter("Transactions").Export(sampleData(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	// title, summary, blank, header, 2 data rows
	require.Len(t, rows, 6)
	assert.Equal(t, "Transactions", rows[0][0])
	assert.Equal(t, []string{"Total Income", "KES 1,500.00"}, rows[1])
	assert.Equal(t, "Date", rows[3][0])
	assert.Equal(t, "tomatoes", rows[4][2])
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPDFExporter().Export(sampleData(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPDFExportRequiresHeaders(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewPDFExporter().Export(&ExportData{Title: "x"}, &buf))
}

func TestServiceExport(t *testing.T) {
	svc := NewService()

	data, contentType, err := svc.Export(sampleData(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", contentType)
	assert.NotEmpty(t, data)

	_, _, err = svc.Export(sampleData(), ExportFormat("docx"))
	assert.Error(t, err)

	at := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "transactions-2026-03-18.xlsx", svc.FileName("transactions", FormatExcel, at))
	assert.Equal(t, "transactions-2026-03-18.pdf", svc.FileName("transactions", FormatPDF, at))
}

func TestExcelExport_MoneyCells(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter("Transactions").Export(sampleData(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	raw, err := f.GetCellValue("Transactions", "D5", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1500", raw)

	shown, err := f.GetCellValue("Transactions", "D6")
	require.NoError(t, err)
	assert.Equal(t, "300.50", shown)
}

func TestSolidFill(t *testing.T) {
	assert.Empty(t, solidFill("#ffffff").Type)
	assert.Empty(t, solidFill("").Type)
	assert.Equal(t, []string{"2E7D32"}, solidFill("#2E7D32").Color)
}
