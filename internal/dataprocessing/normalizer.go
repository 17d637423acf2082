package dataprocessing

import (
	"strconv"

	"github.com/google/uuid"

	"revpulse/pkg/contracts/domain"
)

// Canonical webhook field names. The amount fields have exactly one source
// key each; identity fields accept several aliases tried in order.
const (
	keyPotentialRevenue = "Potential Revenue"
	keyInvoiceAmount    = "Invoice Amount"
	keyDollarsCollected = "Dollars Collected"
	keyExpenseIncurred  = "Expense Incurred"
	keyNetRevenue       = "Net Revenue"
)

var (
	idKeys        = []string{"Opportunity ID", "id", "key"}
	nameKeys      = []string{"Name", "name"}
	monthYearKeys = []string{"MM/YYYY", "monthYear"}
)

// NormalizeRecord reduces one raw webhook object of unknown shape to exactly
// one DataRecord. Missing identity fields fall back to sentinels, missing or
// malformed amounts fall back to 0 through ParseCurrency, and a missing
// Net Revenue is derived from collected minus expenses. The transformation
// is pure apart from the generated ID for records that carry none.
func NormalizeRecord(raw map[string]any) domain.DataRecord {
	collected := ParseCurrency(raw[keyDollarsCollected])
	expense := ParseCurrency(raw[keyExpenseIncurred])

	net := collected - expense
	if v, ok := raw[keyNetRevenue]; ok && v != nil {
		net = ParseCurrency(v)
	}

	id := firstString(raw, idKeys)
	if id == "" {
		// Unique with overwhelming probability within a session; global
		// uniqueness is not required because records never outlive a load.
		id = uuid.NewString()
	}

	name := firstString(raw, nameKeys)
	if name == "" {
		name = domain.UnknownEntity
	}

	monthYear := firstString(raw, monthYearKeys)
	if monthYear == "" {
		monthYear = domain.DefaultMonthYear
	}

	return domain.DataRecord{
		ID:               id,
		Name:             name,
		PotentialRevenue: ParseCurrency(raw[keyPotentialRevenue]),
		InvoiceAmount:    ParseCurrency(raw[keyInvoiceAmount]),
		DollarsCollected: collected,
		ExpenseIncurred:  expense,
		NetRevenue:       net,
		MonthYear:        monthYear,
	}
}

// NormalizeRecords maps a raw collection through NormalizeRecord, preserving
// the source order.
func NormalizeRecords(raw []map[string]any) []domain.DataRecord {
	records := make([]domain.DataRecord, 0, len(raw))
	for _, obj := range raw {
		records = append(records, NormalizeRecord(obj))
	}
	return records
}

// firstString resolves an ordered alias list against the raw object,
// short-circuiting at the first key holding a usable (non-empty) value.
func firstString(raw map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}

// stringValue renders an identity field the way the source most likely
// meant it: strings as-is, whole numbers without a decimal tail.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}
