// Package dashboard derives everything the presentation layer shows from a
// record collection: filter option sets, filtered subsets, aggregate stats,
// and chart series. Every function is a pure computation over its inputs;
// re-derivation happens whenever the source collection or a filter selector
// changes, with no incremental state kept between calls. Collections are
// small (tens of records), so full recomputation is the simplest correct
// choice.
package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"revpulse/pkg/contracts/domain"
)

// Filter holds the two dashboard selectors. A selector is either a concrete
// value or the wildcard domain.FilterAll.
type Filter struct {
	Name  string `json:"name"`
	Month string `json:"month"`
}

// DefaultFilter matches every record.
func DefaultFilter() Filter {
	return Filter{Name: domain.FilterAll, Month: domain.FilterAll}
}

// Normalized returns the filter with empty selectors replaced by the
// wildcard, so an absent query parameter means "All".
func (f Filter) Normalized() Filter {
	if f.Name == "" {
		f.Name = domain.FilterAll
	}
	if f.Month == "" {
		f.Month = domain.FilterAll
	}
	return f
}

// Matches reports whether a record satisfies both selectors.
func (f Filter) Matches(rec domain.DataRecord) bool {
	if f.Name != domain.FilterAll && f.Name != rec.Name {
		return false
	}
	if f.Month != domain.FilterAll && f.Month != rec.MonthYear {
		return false
	}
	return true
}

// Apply returns the subset of records matching the filter, preserving the
// source collection order.
func Apply(records []domain.DataRecord, f Filter) []domain.DataRecord {
	filtered := make([]domain.DataRecord, 0, len(records))
	for _, rec := range records {
		if f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// Options holds the selectable values for both filters, wildcard first.
type Options struct {
	Names  []string `json:"names"`
	Months []string `json:"months"`
}

// DeriveOptions computes the filter option sets for a collection: unique
// names lexicographically sorted and unique months chronologically sorted,
// each prefixed with the wildcard.
func DeriveOptions(records []domain.DataRecord) Options {
	nameSet := make(map[string]struct{})
	monthSet := make(map[string]struct{})
	for _, rec := range records {
		nameSet[rec.Name] = struct{}{}
		monthSet[rec.MonthYear] = struct{}{}
	}

	names := make([]string, 0, len(nameSet)+1)
	names = append(names, domain.FilterAll)
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names[1:])

	months := make([]string, 0, len(monthSet)+1)
	months = append(months, domain.FilterAll)
	for month := range monthSet {
		months = append(months, month)
	}
	SortMonths(months[1:])

	return Options{Names: names, Months: months}
}

// ValidMonthYear reports whether label is a well-formed MM/YYYY month key:
// month 01-12 and a four-digit year.
func ValidMonthYear(label string) bool {
	parts := strings.Split(label, "/")
	if len(parts) != 2 || len(parts[1]) != 4 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	return err == nil && year >= 1
}

// MonthKey decodes a MM/YYYY label into year*12+month for chronological
// comparison. Malformed labels decode to 0 and therefore sort ahead of all
// well-formed ones.
func MonthKey(monthYear string) int {
	parts := strings.Split(monthYear, "/")
	if len(parts) != 2 {
		return 0
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return year*12 + month
}

// SortMonths sorts month labels chronologically in place. The wildcard
// always sorts first; ties keep their relative order.
func SortMonths(months []string) {
	sort.SliceStable(months, func(i, j int) bool {
		if months[i] == domain.FilterAll {
			return months[j] != domain.FilterAll
		}
		if months[j] == domain.FilterAll {
			return false
		}
		return MonthKey(months[i]) < MonthKey(months[j])
	})
}
