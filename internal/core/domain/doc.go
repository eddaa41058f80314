// Package domain holds the types shared by every layer of the search core:
// resources and their chunks, the vector items stored for them, ranked
// results, settings, and the sentinel errors callers match with errors.Is.
//
// A SourceDocument is owned by the Resource Service; this package only
// mirrors the fields search needs. Each document is cut into Chunks, and each
// chunk becomes one VectorItem whose ID is derived from the document ID and
// chunk index (see VectorItemID). The query engine groups matching items back
// into one SearchResult per document.
//
// The package imports nothing outside the standard library.
package domain
