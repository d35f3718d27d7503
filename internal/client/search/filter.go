package search

import "strings"

// AllOption is the chip value that disables a filter
const AllOption = "All"

// Filter is the state of a listing screen's search bar and filter chips.
// Empty or "All" fields do not restrict results.
type Filter struct {
	Query    string
	Country  string
	City     string
	Type     string
	Category string
}

// MatchText reports whether query occurs in any of fields, ignoring case.
// An empty query matches everything.
func MatchText(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// MatchOption reports whether value satisfies the selected chip.
// Matching is a case-insensitive substring check so "New York" matches "New York, Manhattan".
func MatchOption(selected, value string) bool {
	if selected == "" || selected == AllOption {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(selected))
}
