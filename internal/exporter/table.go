package exporter

import (
	"fmt"
	"time"

	"revpulse/pkg/contracts/domain"
)

// recordHeaders is the column order for every export format.
var recordHeaders = []string{
	"Opportunity ID",
	"Name",
	"Month",
	"Potential Revenue",
	"Invoice Amount",
	"Collected Amount",
	"Expense",
	"Net Revenue",
}

// Table is a format-neutral export payload. Rows hold typed cells so the
// XLSX writer can emit real numbers while the CSV writer formats them.
type Table struct {
	Headers []string
	Rows    [][]any
}

// RecordTable converts records into a Table, one row per record in input
// order.
func RecordTable(records []domain.DataRecord) Table {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.ID,
			r.Name,
			r.MonthYear,
			r.PotentialRevenue,
			r.InvoiceAmount,
			r.DollarsCollected,
			r.ExpenseIncurred,
			r.NetRevenue,
		})
	}
	return Table{Headers: recordHeaders, Rows: rows}
}

// Filename builds a timestamped download name such as
// "revpulse-export-20260825-143000.csv".
func Filename(ext string, at time.Time) string {
	return fmt.Sprintf("revpulse-export-%s.%s", at.Format("20060102-150405"), ext)
}
