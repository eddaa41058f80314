package search

import (
	"strings"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// ParseQuery splits raw input into free text and facet filters. Tokens of
// the form faculty:X, year:X and module:X set the matching filter; the last
// occurrence wins. Everything else is kept, in order, as the query text.
func ParseQuery(raw string) (string, domain.SearchFilters) {
	var filters domain.SearchFilters
	terms := make([]string, 0, 8)

	for _, tok := range strings.Fields(raw) {
		name, value, ok := strings.Cut(tok, ":")
		if !ok || value == "" {
			terms = append(terms, tok)
			continue
		}
		switch strings.ToLower(name) {
		case "faculty":
			filters.FacultyID = value
		case "year":
			filters.Year = value
		case "module":
			filters.ModuleID = value
		default:
			terms = append(terms, tok)
		}
	}

	return strings.Join(terms, " "), filters
}
