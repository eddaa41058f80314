package domain

// VectorizationState tracks a document through the vectorization lifecycle.
type VectorizationState string

// Vectorization states.
const (
	// StateNone means the document has no items in the store.
	StateNone VectorizationState = "none"

	// StateVectorizing means a vectorize or revectorize attempt is running.
	StateVectorizing VectorizationState = "vectorizing"

	// StateVectorized means the latest attempt stored a full generation.
	StateVectorized VectorizationState = "vectorized"

	// StateFailed means the latest attempt failed and was rolled back.
	StateFailed VectorizationState = "failed"
)

// String returns the string representation.
func (s VectorizationState) String() string {
	return string(s)
}

// Reasons reported on unsuccessful vectorization.
const (
	// ReasonInsufficientContent means the extracted text was too short to index.
	ReasonInsufficientContent = "insufficient_content"
)

// VectorizeResult is the outcome of a vectorize, revectorize or devectorize call.
type VectorizeResult struct {
	// Success is false when the document was deliberately not indexed.
	Success bool

	// Reason explains an unsuccessful result.
	Reason string

	// ChunkCount is the number of items stored.
	ChunkCount int

	// DeletedCount is the number of items removed.
	DeletedCount int
}
