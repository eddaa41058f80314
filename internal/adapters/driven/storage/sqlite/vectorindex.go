package sqlite

import (
	"context"
	"fmt"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// vectorIndex implements driven.ResourceVectorIndex.
// Each row holds one item ID at its position within the document's list.
type vectorIndex struct {
	store *Store
}

var _ driven.ResourceVectorIndex = (*vectorIndex)(nil)

// Get returns the ordered item IDs for a document, or nil when it has none.
func (x *vectorIndex) Get(ctx context.Context, documentID string) ([]string, error) {
	rows, err := x.store.db.QueryContext(ctx, `
		SELECT item_id FROM resource_vector_index
		WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vector index: %w", domain.ErrStore, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// Add appends item IDs after any already recorded for the document.
func (x *vectorIndex) Add(ctx context.Context, documentID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var next int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position) + 1, 0) FROM resource_vector_index WHERE document_id = ?
	`, documentID).Scan(&next); err != nil {
		return fmt.Errorf("%w: reading index position: %w", domain.ErrStore, err)
	}

	for i, id := range itemIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO resource_vector_index (document_id, position, item_id) VALUES (?, ?, ?)
		`, documentID, next+i, id); err != nil {
			return fmt.Errorf("%w: adding index entry: %w", domain.ErrStore, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %w", domain.ErrStore, err)
	}
	return nil
}

// Remove drops a document's entry.
func (x *vectorIndex) Remove(ctx context.Context, documentID string) error {
	if _, err := x.store.db.ExecContext(ctx,
		"DELETE FROM resource_vector_index WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("%w: removing index entry: %w", domain.ErrStore, err)
	}
	return nil
}

// DocumentIDs returns every indexed document in ascending order.
func (x *vectorIndex) DocumentIDs(ctx context.Context) ([]string, error) {
	rows, err := x.store.db.QueryContext(ctx,
		"SELECT DISTINCT document_id FROM resource_vector_index ORDER BY document_id")
	if err != nil {
		return nil, fmt.Errorf("%w: listing indexed documents: %w", domain.ErrStore, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// Count returns how many documents have an entry.
func (x *vectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.store.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT document_id) FROM resource_vector_index").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting indexed documents: %w", domain.ErrStore, err)
	}
	return n, nil
}
