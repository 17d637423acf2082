package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Revenue"

// firstAmountColumn is the first numeric column in recordHeaders
// (Potential Revenue). Everything from here on gets the amount format.
const firstAmountColumn = 4

// WriteXLSX renders table as a single-sheet workbook with a styled header
// row and two-decimal formatting on the amount columns.
func WriteXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	// NumFmt 4 is the builtin "#,##0.00" format.
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	for i, header := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell %d: %w", i, err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("write header %q: %w", header, err)
		}
	}

	for r, row := range table.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("cell %d,%d: %w", c, r, err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	if len(table.Headers) > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(table.Headers))
		if err != nil {
			return fmt.Errorf("last column: %w", err)
		}
		lastHeader, err := excelize.CoordinatesToCellName(len(table.Headers), 1)
		if err != nil {
			return fmt.Errorf("last header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}

		if len(table.Rows) > 0 && len(table.Headers) >= firstAmountColumn {
			firstCell, err := excelize.CoordinatesToCellName(firstAmountColumn, 2)
			if err != nil {
				return fmt.Errorf("first amount cell: %w", err)
			}
			lastCell, err := excelize.CoordinatesToCellName(len(table.Headers), len(table.Rows)+1)
			if err != nil {
				return fmt.Errorf("last amount cell: %w", err)
			}
			if err := f.SetCellStyle(sheetName, firstCell, lastCell, amountStyle); err != nil {
				return fmt.Errorf("style amounts: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteXLSXFile writes table to path, creating parent directories as needed.
func WriteXLSXFile(path string, table Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := WriteXLSX(file, table); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
