package dataprocessing

import (
	"fmt"
	"math/rand"

	"revpulse/pkg/contracts/domain"
)

// Synthetic dataset shape: 5 entities observed over 5 months, 25 records.
var (
	mockEntities = []string{
		"Acme Corporation",
		"Globex Industries",
		"Initech Solutions",
		"Stark Ventures",
		"Wayne Logistics",
	}
	mockMonths = []string{"01/2024", "02/2024", "03/2024", "04/2024", "05/2024"}
)

// GenerateMockRecords produces the synthetic fallback dataset used when the
// webhook is unreachable or returns nothing. Amounts vary randomly per call
// but always satisfy the dataset's internal relations:
//
//	invoiceAmount   = potentialRevenue * 0.85
//	dollarsCollected in [0.7, 1.0) * invoiceAmount
//	expenseIncurred  in [500, 4500)
//	netRevenue       = dollarsCollected - expenseIncurred
//
// Mock records are never mixed with live data within one session.
func GenerateMockRecords() []domain.DataRecord {
	records := make([]domain.DataRecord, 0, len(mockEntities)*len(mockMonths))
	for e, name := range mockEntities {
		for m, month := range mockMonths {
			potential := 10000 + rand.Float64()*40000
			invoice := potential * 0.85
			collected := invoice * (0.7 + rand.Float64()*0.3)
			expense := 500 + rand.Float64()*4000

			records = append(records, domain.DataRecord{
				ID:               fmt.Sprintf("mock-%02d-%02d", e+1, m+1),
				Name:             name,
				PotentialRevenue: potential,
				InvoiceAmount:    invoice,
				DollarsCollected: collected,
				ExpenseIncurred:  expense,
				NetRevenue:       collected - expense,
				MonthYear:        month,
			})
		}
	}
	return records
}
