package driving

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// Maintenance runs recurring index upkeep such as reconciliation.
type Maintenance interface {
	// Start runs due jobs until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop ends a running Start and waits for it to return.
	Stop() error

	// Reconcile runs reconciliation immediately and records the run.
	Reconcile(ctx context.Context) (*domain.JobRun, error)

	// History returns recent reconcile runs, newest first.
	History(ctx context.Context, limit int) ([]domain.JobRun, error)
}
