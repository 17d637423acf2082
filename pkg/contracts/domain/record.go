package domain

// Sentinel values used across normalization, filtering, and presentation.
const (
	// UnknownEntity is the fallback name for records whose source object
	// carried no usable Name field.
	UnknownEntity = "Unknown Entity"

	// DefaultMonthYear is the fallback MM/YYYY key for records whose source
	// object carried no month information.
	DefaultMonthYear = "01/2024"

	// FilterAll is the wildcard filter selector meaning "match any".
	FilterAll = "All"
)

// DataRecord is the canonical form of one opportunity's financial activity
// for one month. Every raw webhook object, whatever its shape, is reduced to
// exactly one DataRecord. JSON field names follow the canonical schema the
// frontend consumes.
type DataRecord struct {
	// ID is unique per record within a load cycle. It is taken from the
	// source payload when present and generated otherwise.
	ID   string `json:"id"`
	Name string `json:"name"`

	// Amount fields are independent observed quantities; no invariant ties
	// PotentialRevenue, InvoiceAmount, and DollarsCollected together.
	PotentialRevenue float64 `json:"potentialRevenue"`
	InvoiceAmount    float64 `json:"invoiceAmount"`
	DollarsCollected float64 `json:"dollarsCollected"`
	ExpenseIncurred  float64 `json:"expenseIncurred"`

	// NetRevenue is the supplied value when the source carried one, else
	// DollarsCollected - ExpenseIncurred. May be negative.
	NetRevenue float64 `json:"netRevenue"`

	// MonthYear is the MM/YYYY month key, used both as display label and
	// chronological sort key.
	MonthYear string `json:"monthYear"`
}

// DashboardStats holds the derived aggregate figures for a record
// collection. It is recomputed from scratch whenever the underlying
// collection or the active filters change; it is never stored.
type DashboardStats struct {
	TotalPotentialRevenue float64 `json:"totalPotentialRevenue"`
	TotalInvoiceAmount    float64 `json:"totalInvoiceAmount"`
	TotalDollarsCollected float64 `json:"totalDollarsCollected"`
	TotalExpenseIncurred  float64 `json:"totalExpenseIncurred"`
	TotalNetRevenue       float64 `json:"totalNetRevenue"`

	// CollectionRate is TotalDollarsCollected as a percentage of
	// TotalInvoiceAmount, 0 when nothing was invoiced.
	CollectionRate float64 `json:"collectionRate"`

	RecordCount int `json:"recordCount"`
}
