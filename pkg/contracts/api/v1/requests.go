// Package api contains API contract definitions for the RevPulse dashboard.
// Version v1 represents the current stable API version.
package api

// FilterRequest carries the two dashboard filter selectors shared by the
// overview, records, charts, insight, and export endpoints. Either selector
// may be the wildcard "All" (also the default when omitted).
type FilterRequest struct {
	Name  string `json:"name" query:"name"`
	Month string `json:"month" query:"month" validate:"omitempty,eq=All|monthyear"`
}

// ExportRequest extends the filter selectors with an output format.
type ExportRequest struct {
	FilterRequest
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}
