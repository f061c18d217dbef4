package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter writes report tables as styled xlsx workbooks.
type ExcelExporter struct {
	options ExcelOptions
}

// ExcelOptions configures Excel export behavior.
type ExcelOptions struct {
	SheetName    string `json:"sheet_name"`
	FreezeHeader bool   `json:"freeze_header"`
	AutoFilter   bool   `json:"auto_filter"`
	AutoWidth    bool   `json:"auto_width"`
}

// DefaultExcelOptions returns default Excel export options.
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:    "Relatório",
		FreezeHeader: true,
		AutoFilter:   true,
		AutoWidth:    true,
	}
}

func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	return &ExcelExporter{options: options}
}

// WriteTable renders the table into a workbook and writes it to w.
func (e *ExcelExporter) WriteTable(w io.Writer, columns []string, rows [][]string) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := e.options.SheetName
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    cellBorder(),
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dataStyle, err := file.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 11},
		Border: cellBorder(),
	})
	if err != nil {
		return fmt.Errorf("failed to create data style: %w", err)
	}

	widths := make([]float64, len(columns))
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		file.SetCellStyle(sheet, cell, cell, headerStyle)
		widths[i] = float64(len(col))
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			if colIdx >= len(columns) {
				break
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowIdx+1, err)
			}
			file.SetCellStyle(sheet, cell, cell, dataStyle)
			if w := float64(len(value)); w > widths[colIdx] {
				widths[colIdx] = w
			}
		}
	}

	if e.options.FreezeHeader {
		file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	if e.options.AutoFilter && len(rows) > 0 {
		lastCol, _ := excelize.CoordinatesToCellName(len(columns), 1)
		file.AutoFilter(sheet, "A1:"+lastCol, nil)
	}

	if e.options.AutoWidth {
		for i, width := range widths {
			colName, _ := excelize.ColumnNumberToName(i + 1)
			if width < 10 {
				width = 10
			}
			if width > 50 {
				width = 50
			}
			file.SetColWidth(sheet, colName, colName, width+2)
		}
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1, Color: "D9D9D9"},
		{Type: "right", Style: 1, Color: "D9D9D9"},
		{Type: "top", Style: 1, Color: "D9D9D9"},
		{Type: "bottom", Style: 1, Color: "D9D9D9"},
	}
}
