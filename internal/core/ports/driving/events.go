package driving

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// DocumentEvents receives resource lifecycle notifications.
// Each call enqueues work and returns without waiting for it.
type DocumentEvents interface {
	// OnDocumentCreated schedules vectorization of a new resource.
	OnDocumentCreated(doc domain.SourceDocument) error

	// OnDocumentContentChanged schedules revectorization of an updated resource.
	OnDocumentContentChanged(doc domain.SourceDocument) error

	// OnDocumentDeleted schedules devectorization of a removed resource.
	OnDocumentDeleted(documentID string) error

	// Pending returns the number of queued tasks not yet started.
	Pending() int

	// Close stops intake and waits for queued work or ctx cancellation.
	Close(ctx context.Context) error
}
