package domain

import "strings"

// FilterAll is the filter value that leaves a dimension unconstrained.
const FilterAll = "all"

// SearchFilters constrains a query by resource attributes.
// An empty value or FilterAll leaves that dimension unconstrained.
type SearchFilters struct {
	FacultyID string
	Year      string
	ModuleID  string
}

// constrained reports whether a filter value restricts results.
func constrained(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, FilterAll)
}

// IsEmpty returns true if no dimension is constrained.
func (f SearchFilters) IsEmpty() bool {
	return !constrained(f.FacultyID) && !constrained(f.Year) && !constrained(f.ModuleID)
}

// Matches returns true if the item payload satisfies every constrained dimension.
func (f SearchFilters) Matches(meta ItemMetadata) bool {
	if constrained(f.FacultyID) && meta.FacultyID != strings.TrimSpace(f.FacultyID) {
		return false
	}
	if constrained(f.Year) && meta.Year != strings.TrimSpace(f.Year) {
		return false
	}
	if constrained(f.ModuleID) && meta.ModuleID != strings.TrimSpace(f.ModuleID) {
		return false
	}
	return true
}

// SearchResult represents one ranked document.
type SearchResult struct {
	// Document is the canonical resource, joined at query time.
	Document SourceDocument

	// RelevanceScore blends the mean and best chunk similarity.
	RelevanceScore float64

	// ChunkCount is the number of matching chunks after filtering.
	ChunkCount int

	// MatchedChunks holds up to two excerpts from the best chunks.
	MatchedChunks []string
}

// IndexStatus describes the readiness and size of the vector index.
type IndexStatus struct {
	// Ready is true once the vector store has been opened.
	Ready bool

	// ItemCount is the number of stored vector items.
	ItemCount int

	// DocumentCount is the number of vectorized documents.
	DocumentCount int

	// PendingTasks is the lifecycle queue depth.
	PendingTasks int
}
