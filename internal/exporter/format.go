package exporter

import (
	"fmt"
	"strconv"
)

// formatAmount formats a monetary value with exactly 2 decimal places so
// values like 13.4 appear as 13.40 in CSV.
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatCell renders a typed cell for text output.
func formatCell(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return formatAmount(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
