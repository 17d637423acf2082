package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// utf8BOM helps Excel recognize UTF-8 encoded CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures CSV writing behavior.
type CSVOptions struct {
	BOMPrefix bool // prepend a UTF-8 BOM for Excel compatibility
}

// WriteCSV streams table to w as CSV. Headers are written first when
// present, then one line per row in table order.
func WriteCSV(w io.Writer, table Table, options CSVOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(table.Headers) > 0 {
		if err := writer.Write(table.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}

	line := make([]string, 0, len(table.Headers))
	for i, row := range table.Rows {
		line = line[:0]
		for _, cell := range row {
			line = append(line, formatCell(cell))
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes table to path, creating parent directories as needed.
func WriteCSVFile(path string, table Table, options CSVOptions) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := WriteCSV(file, table, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
