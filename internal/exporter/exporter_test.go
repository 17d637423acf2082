package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"revpulse/pkg/contracts/domain"
)

func sampleRecords() []domain.DataRecord {
	return []domain.DataRecord{
		{
			ID:               "opp-1",
			Name:             "Acme Corporation",
			MonthYear:        "01/2024",
			PotentialRevenue: 50000,
			InvoiceAmount:    42500,
			DollarsCollected: 40000,
			ExpenseIncurred:  3000,
			NetRevenue:       37000,
		},
		{
			ID:               "opp-2",
			Name:             "Globex Industries",
			MonthYear:        "02/2024",
			PotentialRevenue: 1250.5,
			InvoiceAmount:    1000,
			DollarsCollected: 800.25,
			ExpenseIncurred:  100,
			NetRevenue:       700.25,
		},
	}
}

func TestRecordTable(t *testing.T) {
	table := RecordTable(sampleRecords())

	require.Equal(t, recordHeaders, table.Headers)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "opp-1", table.Rows[0][0])
	assert.Equal(t, "Acme Corporation", table.Rows[0][1])
	assert.Equal(t, "01/2024", table.Rows[0][2])
	assert.Equal(t, 50000.0, table.Rows[0][3])
	assert.Equal(t, 700.25, table.Rows[1][7])
}

func TestRecordTableEmpty(t *testing.T) {
	table := RecordTable(nil)

	assert.Equal(t, recordHeaders, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, RecordTable(sampleRecords()), CSVOptions{})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one line per record")

	assert.Equal(t, recordHeaders, rows[0])
	assert.Equal(t, []string{"opp-1", "Acme Corporation", "01/2024", "50000.00", "42500.00", "40000.00", "3000.00", "37000.00"}, rows[1])
	assert.Equal(t, "800.25", rows[2][5])
}

func TestWriteCSVBOMPrefix(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, RecordTable(sampleRecords()), CSVOptions{BOMPrefix: true})
	require.NoError(t, err)

	assert.Equal(t, utf8BOM, buf.Bytes()[:3])
}

func TestWriteCSVEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, RecordTable(nil), CSVOptions{})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "headers only")
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "revenue.csv")
	err := WriteCSVFile(path, RecordTable(sampleRecords()), CSVOptions{BOMPrefix: true})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, data[:3])
	assert.Contains(t, string(data), "Globex Industries")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, RecordTable(sampleRecords()))
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Opportunity ID", rows[0][0])
	assert.Equal(t, "Acme Corporation", rows[1][1])
	assert.Equal(t, "02/2024", rows[2][2])
}

func TestWriteXLSXEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, RecordTable(nil))
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Opportunity ID", value)
}

func TestWriteXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "revenue.xlsx")
	err := WriteXLSXFile(path, RecordTable(sampleRecords()))
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", value)
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "revpulse-export-20260825-143000.csv", Filename("csv", at))
	assert.Equal(t, "revpulse-export-20260825-143000.xlsx", Filename("xlsx", at))
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "string", in: "hello", want: "hello"},
		{name: "float", in: 13.4, want: "13.40"},
		{name: "float negative", in: -2.5, want: "-2.50"},
		{name: "int", in: 7, want: "7"},
		{name: "int64", in: int64(42), want: "42"},
		{name: "bool", in: true, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}
