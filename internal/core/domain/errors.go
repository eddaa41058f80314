package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters wrap their own failures with these so services can classify them.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists indicates an entity with the same ID already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnsupportedType indicates no extractor handles a content type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Index Errors.

	// ErrConfig indicates invalid configuration, such as chunk parameters
	// that would never terminate. Rejected at configuration time.
	ErrConfig = errors.New("invalid configuration")

	// ErrExtraction indicates a document's content could not be read or parsed.
	// The document is skipped; batches continue.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding indicates the embedding model failed or is unreachable.
	// The current operation is aborted and not retried here.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStore indicates a vector store or index I/O failure.
	ErrStore = errors.New("vector store failure")

	// Search Errors.

	// ErrInvalidQuery indicates an empty or whitespace-only search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrSearchUnavailable indicates search infrastructure is unavailable.
	// It is never reported as an empty result.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Dispatcher Errors.

	// ErrDispatcherClosed indicates a lifecycle event arrived after shutdown.
	ErrDispatcherClosed = errors.New("dispatcher closed")
)
