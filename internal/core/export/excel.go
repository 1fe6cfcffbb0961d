package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelMoneyFormat is the built-in "#,##0.00" number format
const excelMoneyFormat = 4

// ExcelExporter writes one sheet: title block, summary lines, then the table
type ExcelExporter struct {
	sheetName string
}

func NewExcelExporter(sheetName string) *ExcelExporter {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &ExcelExporter{sheetName: sheetName}
}

// sheet keeps the first error so the layout code can stay linear
type sheet struct {
	f    *excelize.File
	name string
	err  error
}

func (s *sheet) set(col, row int, value interface{}, style int) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.err = err
		return
	}
	if s.err = s.f.SetCellValue(s.name, cell, value); s.err != nil {
		return
	}
	if style != 0 {
		s.err = s.f.SetCellStyle(s.name, cell, cell, style)
	}
}

func (s *sheet) style(st *excelize.Style) int {
	if s.err != nil {
		return 0
	}
	id, err := s.f.NewStyle(st)
	s.err = err
	return id
}

func (e *ExcelExporter) Export(data *ExportData, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	s := &sheet{f: f, name: e.sheetName}
	st := data.Style

	row := 1
	if data.Title != "" {
		s.set(1, row, data.Title, s.style(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Family: st.FontFamily}}))
		row++
		if data.Description != "" {
			s.set(1, row, data.Description, 0)
			row++
		}
	}

	if len(data.Summary) > 0 {
		bold := s.style(&excelize.Style{Font: &excelize.Font{Bold: true}})
		for _, line := range data.Summary {
			s.set(1, row, line.Label, bold)
			s.set(2, row, line.Value, 0)
			row++
		}
	}
	if row > 1 {
		row++ // blank row before the table
	}

	header := s.style(&excelize.Style{
		Font:      &excelize.Font{Bold: st.HeaderBold, Size: st.FontSize, Family: st.FontFamily, Color: "FFFFFF"},
		Fill:      solidFill(st.HeaderBgColor),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headerRow := row
	for i, title := range data.Headers {
		s.set(i+1, row, title, header)
		width, ok := st.ColumnWidths[i]
		if !ok {
			width = 16
		}
		if col, err := excelize.ColumnNumberToName(i + 1); err == nil && s.err == nil {
			s.err = f.SetColWidth(e.sheetName, col, col, width)
		}
	}
	row++

	// text and money cells per stripe
	stripes := [2][2]int{}
	for i, bg := range []string{st.RowBgColor1, st.RowBgColor2} {
		if i == 1 && !st.AlternateRows {
			stripes[1] = stripes[0]
			break
		}
		base := excelize.Style{Font: &excelize.Font{Size: st.FontSize, Family: st.FontFamily}, Fill: solidFill(bg)}
		money := base
		money.NumFmt = excelMoneyFormat
		stripes[i] = [2]int{s.style(&base), s.style(&money)}
	}

	for i, values := range data.Rows {
		stripe := stripes[i%2]
		for col, value := range values {
			style := stripe[0]
			if isNumeric(value) {
				style = stripe[1]
			}
			s.set(col+1, row, value, style)
		}
		row++
	}
	if s.err != nil {
		return fmt.Errorf("failed to fill sheet: %w", s.err)
	}

	if st.FreezeHeader {
		topLeft, _ := excelize.CoordinatesToCellName(1, headerRow+1)
		if err := f.SetPanes(e.sheetName, &excelize.Panes{Freeze: true, YSplit: headerRow, TopLeftCell: topLeft, ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	if st.AutoFilter && len(data.Headers) > 0 {
		from, _ := excelize.CoordinatesToCellName(1, headerRow)
		to, _ := excelize.CoordinatesToCellName(len(data.Headers), headerRow+len(data.Rows))
		if err := f.AutoFilter(e.sheetName, from+":"+to, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func (e *ExcelExporter) GetContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelExporter) GetFileExtension() string {
	return ".xlsx"
}

// solidFill is empty for white so plain rows carry no fill
func solidFill(hex string) excelize.Fill {
	hex = strings.TrimPrefix(hex, "#")
	if hex == "" || strings.EqualFold(hex, "FFFFFF") {
		return excelize.Fill{}
	}
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}}
}
