package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceDocument is a resource as known to the Resource Service.
// The search core only reads it; the canonical copy lives elsewhere.
type SourceDocument struct {
	// ID is the canonical resource identifier.
	ID string

	// Title is the human-readable title.
	Title string

	// Description is the free-text description entered by the uploader.
	Description string

	// Locator points at the uploaded content (file path, file:// URI or URL).
	Locator string

	// ContentType is the MIME type recorded at upload time.
	ContentType string

	// Year is the academic year the resource belongs to.
	Year string

	// FacultyID is the owning faculty.
	FacultyID string

	// ModuleID is the module the resource is attached to.
	ModuleID string
}

// Chunk is an ephemeral text window cut from a document's extracted text.
type Chunk struct {
	// DocumentID links to the SourceDocument.
	DocumentID string

	// Index is the ordinal position within the document.
	Index int

	// Total is the number of chunks the document produced.
	Total int

	// Text is the window content.
	Text string

	// Start and End are character offsets of the window in the extracted text.
	Start int
	End   int
}

// ItemMetadata is the denormalised payload stored next to every vector.
type ItemMetadata struct {
	DocumentID  string `json:"document_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Year        string `json:"year,omitempty"`
	FacultyID   string `json:"faculty_id,omitempty"`
	ModuleID    string `json:"module_id,omitempty"`
	ChunkText   string `json:"chunk_text"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// NewItemMetadata copies the document fields and chunk details into a payload.
func NewItemMetadata(doc SourceDocument, chunk Chunk) ItemMetadata {
	return ItemMetadata{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		ContentType: doc.ContentType,
		Year:        doc.Year,
		FacultyID:   doc.FacultyID,
		ModuleID:    doc.ModuleID,
		ChunkText:   chunk.Text,
		ChunkIndex:  chunk.Index,
		TotalChunks: chunk.Total,
	}
}

// VectorItem is the persisted unit of the vector store.
type VectorItem struct {
	// ID is VectorItemID(DocumentID, ChunkIndex).
	ID string

	// Vector is the chunk embedding.
	Vector []float32

	// Metadata is the denormalised document and chunk payload.
	Metadata ItemMetadata
}

// vectorItemSeparator joins the document ID and chunk index in item IDs.
const vectorItemSeparator = ":chunk:"

// VectorItemID returns the deterministic item ID for a document chunk.
func VectorItemID(documentID string, chunkIndex int) string {
	return documentID + vectorItemSeparator + strconv.Itoa(chunkIndex)
}

// ParseVectorItemID splits an item ID back into document ID and chunk index.
func ParseVectorItemID(id string) (string, int, error) {
	pos := strings.LastIndex(id, vectorItemSeparator)
	if pos <= 0 {
		return "", 0, fmt.Errorf("%w: malformed vector item id %q", ErrInvalidInput, id)
	}
	index, err := strconv.Atoi(id[pos+len(vectorItemSeparator):])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: malformed vector item id %q", ErrInvalidInput, id)
	}
	return id[:pos], index, nil
}

// VectorMatch is a nearest-neighbour candidate returned by the vector store.
type VectorMatch struct {
	// ID is the matched item.
	ID string

	// Score is the cosine similarity with the query vector.
	Score float64

	// Metadata is the stored payload of the item.
	Metadata ItemMetadata
}
