package services

import (
	"context"
	"fmt"

	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
	"github.com/learnbox/learnbox-search/internal/logger"
)

// documentDeleter is the part of driving.DocumentEvents the reconciler needs.
type documentDeleter interface {
	OnDocumentDeleted(documentID string) error
}

// Reconciler finds index entries whose document has left the canonical
// repository and schedules their devectorization. It covers delete events
// that were never delivered.
type Reconciler struct {
	index   driven.ResourceVectorIndex
	repo    driven.ResourceRepository
	deleter documentDeleter
}

// NewReconciler creates a reconciler. Deletes go through deleter so they are
// serialised with other lifecycle work for the same document.
func NewReconciler(index driven.ResourceVectorIndex, repo driven.ResourceRepository, deleter documentDeleter) *Reconciler {
	return &Reconciler{index: index, repo: repo, deleter: deleter}
}

// Run schedules a devectorize for every orphaned document and returns how
// many were scheduled.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	ids, err := r.index.DocumentIDs(ctx)
	if err != nil {
		return 0, wrapStore(err, "listing indexed documents")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	exists, err := r.repo.ExistsMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("checking resources: %w", err)
	}

	scheduled := 0
	for _, id := range ids {
		if exists[id] {
			continue
		}
		if err := r.deleter.OnDocumentDeleted(id); err != nil {
			return scheduled, fmt.Errorf("scheduling devectorize %s: %w", id, err)
		}
		scheduled++
	}

	if scheduled > 0 {
		logger.Info("reconcile: scheduled %d orphaned documents for removal", scheduled)
	}
	return scheduled, nil
}
