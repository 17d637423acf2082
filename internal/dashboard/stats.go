package dashboard

import "revpulse/pkg/contracts/domain"

// ComputeStats sums every amount field over the collection and derives the
// collection rate. Called with the filtered subset, never the raw source,
// so the cards always agree with the table.
func ComputeStats(records []domain.DataRecord) domain.DashboardStats {
	stats := domain.DashboardStats{RecordCount: len(records)}
	for _, rec := range records {
		stats.TotalPotentialRevenue += rec.PotentialRevenue
		stats.TotalInvoiceAmount += rec.InvoiceAmount
		stats.TotalDollarsCollected += rec.DollarsCollected
		stats.TotalExpenseIncurred += rec.ExpenseIncurred
		stats.TotalNetRevenue += rec.NetRevenue
	}
	if stats.TotalInvoiceAmount > 0 {
		stats.CollectionRate = stats.TotalDollarsCollected / stats.TotalInvoiceAmount * 100
	}
	return stats
}
