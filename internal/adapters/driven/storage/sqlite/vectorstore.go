package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/viant/vec/search"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// vectorStore implements driven.VectorStore with an exact cosine scan.
// The magnitude is stored next to each vector; zero vectors never match.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// Insert stores a single item, replacing any item with the same ID.
func (v *vectorStore) Insert(ctx context.Context, item domain.VectorItem) error {
	return v.InsertBatch(ctx, []domain.VectorItem{item})
}

// InsertBatch stores items in a single transaction.
func (v *vectorStore) InsertBatch(ctx context.Context, items []domain.VectorItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_items (id, document_id, chunk_index, vector, magnitude, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			chunk_index = excluded.chunk_index,
			vector = excluded.vector,
			magnitude = excluded.magnitude,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing insert: %w", domain.ErrStore, err)
	}
	defer stmt.Close()

	now := nowUTC()
	for _, item := range items {
		if item.ID == "" || len(item.Vector) == 0 {
			return fmt.Errorf("%w: vector item requires id and vector", domain.ErrInvalidInput)
		}
		metadataJSON, err := json.Marshal(item.Metadata)
		if err != nil {
			return fmt.Errorf("%w: marshalling metadata: %w", domain.ErrStore, err)
		}
		magnitude := search.Float32s(item.Vector).Magnitude()
		if _, err := stmt.ExecContext(ctx, item.ID, item.Metadata.DocumentID, item.Metadata.ChunkIndex,
			encodeVector(item.Vector), magnitude, string(metadataJSON), now); err != nil {
			return fmt.Errorf("%w: inserting %s: %w", domain.ErrStore, item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %w", domain.ErrStore, err)
	}
	return nil
}

// Delete removes an item. Missing IDs are ignored.
func (v *vectorStore) Delete(ctx context.Context, id string) error {
	if _, err := v.store.db.ExecContext(ctx, "DELETE FROM vector_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("%w: deleting %s: %w", domain.ErrStore, id, err)
	}
	return nil
}

// QueryNearest scans every item and keeps the k most similar to vector.
func (v *vectorStore) QueryNearest(ctx context.Context, vector []float32, k int) ([]domain.VectorMatch, error) {
	if k <= 0 {
		return nil, nil
	}
	query := search.Float32s(vector)
	queryMagnitude := query.Magnitude()
	if queryMagnitude == 0 {
		return nil, fmt.Errorf("%w: query vector has zero magnitude", domain.ErrInvalidInput)
	}

	rows, err := v.store.db.QueryContext(ctx, "SELECT id, vector, magnitude, metadata FROM vector_items")
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var matches []domain.VectorMatch
	for rows.Next() {
		var (
			id           string
			blob         []byte
			magnitude    float64
			metadataJSON string
		)
		if err := rows.Scan(&id, &blob, &magnitude, &metadataJSON); err != nil {
			return nil, fmt.Errorf("%w: scanning vector: %w", domain.ErrStore, err)
		}
		stored := decodeVector(blob)
		if len(stored) != len(vector) || magnitude == 0 {
			continue
		}
		distance := query.CosineDistance(stored)

		var meta domain.ItemMetadata
		if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
			return nil, fmt.Errorf("%w: unmarshaling metadata for %s: %w", domain.ErrStore, id, err)
		}
		matches = append(matches, domain.VectorMatch{
			ID:       id,
			Score:    1 - float64(distance),
			Metadata: meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating vectors: %w", domain.ErrStore, err)
	}

	sortMatches(matches)
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// ListAll returns every stored item ID in ascending order.
func (v *vectorStore) ListAll(ctx context.Context) ([]string, error) {
	rows, err := v.store.db.QueryContext(ctx, "SELECT id FROM vector_items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: listing vectors: %w", domain.ErrStore, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// Count returns the number of stored items.
func (v *vectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vector_items").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting vectors: %w", domain.ErrStore, err)
	}
	return n, nil
}

// Ready reports whether the database answers a ping.
func (v *vectorStore) Ready() bool {
	return v.store.db.Ping() == nil
}

// Close is a no-op. The owning Store closes the connection.
func (v *vectorStore) Close() error {
	return nil
}

// sortMatches orders by descending score, then ascending ID.
func sortMatches(matches []domain.VectorMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
}

// scanStrings reads a single text column from every row.
func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("%w: scanning row: %w", domain.ErrStore, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rows: %w", domain.ErrStore, err)
	}
	return out, nil
}
