package dataprocessing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseCurrency converts an arbitrary webhook value into a float amount.
// The webhook payload is loosely typed: amounts arrive as numbers, as
// formatted strings ("$1,250.00"), or not at all. The policy is total
// absorption: malformed input collapses to 0, never to an error.
//
//   - nil and empty strings become 0
//   - numeric values pass through as-is
//   - strings are stripped of every rune that is not a digit, '.', or '-'
//     and then parsed; an unparsable remainder becomes 0
//   - anything else is stringified and handled like a string
func ParseCurrency(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return parseCurrencyString(val.String())
	case string:
		return parseCurrencyString(val)
	default:
		return parseCurrencyString(fmt.Sprint(val))
	}
}

func parseCurrencyString(s string) float64 {
	if s == "" {
		return 0
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}
