package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the workbooks produced here
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet describes a single worksheet of tabular data
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// ExportRows renders one sheet into an XLSX workbook and returns its bytes.
// The header row is bold.
func ExportRows(sheet Sheet) ([]byte, error) {
	if len(sheet.Headers) == 0 {
		return nil, fmt.Errorf("export: sheet %q has no headers", sheet.Name)
	}
	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("export: failed to name sheet: %w", err)
	}

	headers := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &headers); err != nil {
		return nil, fmt.Errorf("export: failed to write headers: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export: failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("export: failed to style headers: %w", err)
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export: invalid row %d: %w", i, err)
		}
		r := row
		if err := f.SetSheetRow(name, cell, &r); err != nil {
			return nil, fmt.Errorf("export: failed to write row %d: %w", i, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(sheet.Headers))
	if err != nil {
		return nil, fmt.Errorf("export: invalid column count: %w", err)
	}
	if err := f.SetColWidth(name, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("export: failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
