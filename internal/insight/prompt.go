package insight

import (
	"fmt"
	"strconv"
	"strings"

	"revpulse/pkg/contracts/domain"
)

// MaxRecords caps how many records travel to the collaborator. The insight
// is a one-sentence reading, not an audit; fifteen records is plenty of
// signal and keeps the prompt small.
const MaxRecords = 15

// SummarizeRecords renders up to MaxRecords records into the compact block
// the prompt carries, one entry per record:
//
//	{name}: Rev {dollarsCollected}, Exp {expenseIncurred}, Net {netRevenue}; ...
func SummarizeRecords(records []domain.DataRecord) string {
	if len(records) > MaxRecords {
		records = records[:MaxRecords]
	}
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		parts = append(parts, fmt.Sprintf("%s: Rev %s, Exp %s, Net %s",
			rec.Name,
			formatAmount(rec.DollarsCollected),
			formatAmount(rec.ExpenseIncurred),
			formatAmount(rec.NetRevenue)))
	}
	return strings.Join(parts, "; ")
}

// BuildPrompt wraps the record summary with the analyst instruction.
func BuildPrompt(records []domain.DataRecord) string {
	return fmt.Sprintf(`You are a financial analyst reviewing a revenue dashboard.

Monthly figures per entity (Rev = dollars collected, Exp = expenses incurred, Net = net revenue):
%s

Respond with exactly one concise sentence highlighting the most notable pattern, risk, or win in this data. Do not repeat the raw numbers back; interpret them.`,
		SummarizeRecords(records))
}

// formatAmount renders an amount in shortest round-trip form, so 100 stays
// "100" and 1250.5 stays "1250.5".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
