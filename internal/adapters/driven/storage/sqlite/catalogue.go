package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// catalogue implements driven.ResourceCatalogue.
type catalogue struct {
	store *Store
}

var _ driven.ResourceCatalogue = (*catalogue)(nil)

const resourceColumns = "id, title, description, locator, content_type, year, faculty_id, module_id"

// Save stores or updates a resource.
func (c *catalogue) Save(ctx context.Context, doc *domain.SourceDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: resource requires an id", domain.ErrInvalidInput)
	}

	now := nowUTC()
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO resources (`+resourceColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			locator = excluded.locator,
			content_type = excluded.content_type,
			year = excluded.year,
			faculty_id = excluded.faculty_id,
			module_id = excluded.module_id,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.Description, doc.Locator, doc.ContentType,
		doc.Year, doc.FacultyID, doc.ModuleID, now, now)
	if err != nil {
		return fmt.Errorf("%w: saving resource: %w", domain.ErrStore, err)
	}
	return nil
}

// Get retrieves a resource by ID.
func (c *catalogue) Get(ctx context.Context, id string) (*domain.SourceDocument, error) {
	row := c.store.db.QueryRowContext(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE id = ?", id)

	doc, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ExistsMany reports which IDs are present. Every requested ID gets an entry.
func (c *catalogue) ExistsMany(ctx context.Context, ids []string) (map[string]bool, error) {
	exists := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return exists, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		exists[id] = false
		args[i] = id
	}

	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id FROM resources WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, fmt.Errorf("%w: checking resources: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	found, err := scanStrings(rows)
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		exists[id] = true
	}
	return exists, nil
}

// Delete removes a resource.
func (c *catalogue) Delete(ctx context.Context, id string) error {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id); err != nil {
		return fmt.Errorf("%w: deleting resource: %w", domain.ErrStore, err)
	}
	return nil
}

// List returns every resource ordered by ID.
func (c *catalogue) List(ctx context.Context) ([]domain.SourceDocument, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT "+resourceColumns+" FROM resources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: listing resources: %w", domain.ErrStore, err)
	}
	defer rows.Close()
	return scanResources(rows)
}

// FindByLocator returns resources pointing at the given locator.
func (c *catalogue) FindByLocator(ctx context.Context, locator string) ([]domain.SourceDocument, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE locator = ? ORDER BY id", locator)
	if err != nil {
		return nil, fmt.Errorf("%w: finding resources: %w", domain.ErrStore, err)
	}
	defer rows.Close()
	return scanResources(rows)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*domain.SourceDocument, error) {
	var doc domain.SourceDocument
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Description, &doc.Locator,
		&doc.ContentType, &doc.Year, &doc.FacultyID, &doc.ModuleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: scanning resource: %w", domain.ErrStore, err)
	}
	return &doc, nil
}

func scanResources(rows *sql.Rows) ([]domain.SourceDocument, error) {
	var docs []domain.SourceDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating resources: %w", domain.ErrStore, err)
	}
	return docs, nil
}
