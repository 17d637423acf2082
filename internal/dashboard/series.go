package dashboard

import (
	"sort"

	"revpulse/pkg/contracts/domain"
)

// MonthlyPoint is one chronological step of the monthly trend chart.
type MonthlyPoint struct {
	MonthYear        string  `json:"monthYear"`
	PotentialRevenue float64 `json:"potentialRevenue"`
	InvoiceAmount    float64 `json:"invoiceAmount"`
	DollarsCollected float64 `json:"dollarsCollected"`
	ExpenseIncurred  float64 `json:"expenseIncurred"`
	NetRevenue       float64 `json:"netRevenue"`
}

// MonthlyTrend groups the collection by month and sums each amount field,
// returning points in chronological order.
func MonthlyTrend(records []domain.DataRecord) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	for _, rec := range records {
		point, ok := byMonth[rec.MonthYear]
		if !ok {
			point = &MonthlyPoint{MonthYear: rec.MonthYear}
			byMonth[rec.MonthYear] = point
		}
		point.PotentialRevenue += rec.PotentialRevenue
		point.InvoiceAmount += rec.InvoiceAmount
		point.DollarsCollected += rec.DollarsCollected
		point.ExpenseIncurred += rec.ExpenseIncurred
		point.NetRevenue += rec.NetRevenue
	}

	points := make([]MonthlyPoint, 0, len(byMonth))
	for _, point := range byMonth {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool {
		return MonthKey(points[i].MonthYear) < MonthKey(points[j].MonthYear)
	})
	return points
}

// EntityTotals is one bar group of the per-entity breakdown chart.
type EntityTotals struct {
	Name             string  `json:"name"`
	PotentialRevenue float64 `json:"potentialRevenue"`
	InvoiceAmount    float64 `json:"invoiceAmount"`
	DollarsCollected float64 `json:"dollarsCollected"`
	ExpenseIncurred  float64 `json:"expenseIncurred"`
	NetRevenue       float64 `json:"netRevenue"`
}

// EntityBreakdown groups the collection by entity name and sums each amount
// field, returning entities in lexicographic order to match the name filter
// options.
func EntityBreakdown(records []domain.DataRecord) []EntityTotals {
	byName := make(map[string]*EntityTotals)
	for _, rec := range records {
		totals, ok := byName[rec.Name]
		if !ok {
			totals = &EntityTotals{Name: rec.Name}
			byName[rec.Name] = totals
		}
		totals.PotentialRevenue += rec.PotentialRevenue
		totals.InvoiceAmount += rec.InvoiceAmount
		totals.DollarsCollected += rec.DollarsCollected
		totals.ExpenseIncurred += rec.ExpenseIncurred
		totals.NetRevenue += rec.NetRevenue
	}

	entities := make([]EntityTotals, 0, len(byName))
	for _, totals := range byName {
		entities = append(entities, *totals)
	}
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Name < entities[j].Name
	})
	return entities
}
