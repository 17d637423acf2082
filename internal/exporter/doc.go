// Package exporter renders dashboard records as downloadable tables.
//
// This package contains three main components:
//
// Table: a format-neutral header/row representation built from normalized
// records. Rows preserve record order, so an export reflects exactly the
// view the caller filtered.
//
// CSV writer: streams a Table to any io.Writer with an optional UTF-8 BOM
// so Excel opens the file with correct encoding.
//
// XLSX writer: renders a Table as a styled workbook via excelize, with a
// header row and numeric formatting on the amount columns.
//
// Example usage:
//
//	table := exporter.RecordTable(records)
//	err := exporter.WriteCSV(w, table, exporter.CSVOptions{BOMPrefix: true})
package exporter
