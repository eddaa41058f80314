package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
	}
	return store, cleanup
}

func testItem(docID string, index int, vector ...float32) domain.VectorItem {
	return domain.VectorItem{
		ID:     domain.VectorItemID(docID, index),
		Vector: vector,
		Metadata: domain.ItemMetadata{
			DocumentID:  docID,
			Title:       "Doc " + docID,
			ChunkText:   "chunk text",
			ChunkIndex:  index,
			TotalChunks: 1,
			FacultyID:   "fac-1",
		},
	}
}

// ==================== Store Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.VectorStore().Insert(ctx, testItem("r1", 0, 1, 0)))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.VectorStore().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var versions int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

// ==================== VectorStore Tests ====================

func TestVectorStore_InsertAndQuery(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vs := store.VectorStore()

	require.NoError(t, vs.InsertBatch(ctx, []domain.VectorItem{
		testItem("r1", 0, 1, 0, 0),
		testItem("r2", 0, 0, 1, 0),
		testItem("r3", 0, 0.9, 0.1, 0),
	}))

	matches, err := vs.QueryNearest(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "r1:chunk:0", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
	assert.Equal(t, "r3:chunk:0", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.Equal(t, "Doc r1", matches[0].Metadata.Title)
	assert.Equal(t, "fac-1", matches[0].Metadata.FacultyID)
}

func TestVectorStore_QueryTiesOrderedByID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vs := store.VectorStore()

	require.NoError(t, vs.InsertBatch(ctx, []domain.VectorItem{
		testItem("b", 0, 1, 1),
		testItem("a", 0, 1, 1),
	}))

	matches, err := vs.QueryNearest(ctx, []float32{1, 1}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a:chunk:0", matches[0].ID)
	assert.Equal(t, "b:chunk:0", matches[1].ID)
}

func TestVectorStore_InsertReplacesExisting(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vs := store.VectorStore()

	require.NoError(t, vs.Insert(ctx, testItem("r1", 0, 1, 0)))
	require.NoError(t, vs.Insert(ctx, testItem("r1", 0, 0, 1)))

	n, err := vs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := vs.QueryNearest(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
}

func TestVectorStore_QueryIgnoresScale(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vs := store.VectorStore()

	require.NoError(t, vs.InsertBatch(ctx, []domain.VectorItem{
		testItem("long", 0, 30, 40),
		testItem("zero", 0, 0, 0),
	}))

	matches, err := vs.QueryNearest(ctx, []float32{0.6, 0.8}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1, "zero vectors never match")
	assert.Equal(t, "long:chunk:0", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
}

func TestVectorStore_QueryCorruptMetadata(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.VectorStore().Insert(ctx, testItem("r1", 0, 1, 0)))
	_, err := store.db.ExecContext(ctx, "UPDATE vector_items SET metadata = '{broken'")
	require.NoError(t, err)

	_, err = store.VectorStore().QueryNearest(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestVectorStore_QueryZeroVector(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.VectorStore().QueryNearest(context.Background(), []float32{0, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorStore_QueryZeroK(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	matches, err := store.VectorStore().QueryNearest(context.Background(), []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestVectorStore_InsertRejectsEmptyVector(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.VectorStore().Insert(context.Background(), testItem("r1", 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorStore_DeleteAndListAll(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	vs := store.VectorStore()

	require.NoError(t, vs.InsertBatch(ctx, []domain.VectorItem{
		testItem("r2", 0, 1, 0),
		testItem("r1", 1, 1, 0),
		testItem("r1", 0, 1, 0),
	}))

	require.NoError(t, vs.Delete(ctx, "r1:chunk:1"))
	require.NoError(t, vs.Delete(ctx, "missing:chunk:0"))

	ids, err := vs.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1:chunk:0", "r2:chunk:0"}, ids)
	assert.True(t, vs.Ready())
}

// ==================== ResourceVectorIndex Tests ====================

func TestVectorIndex_AddAppends(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	idx := store.VectorIndex()

	require.NoError(t, idx.Add(ctx, "r1", []string{"r1:chunk:0", "r1:chunk:1"}))
	require.NoError(t, idx.Add(ctx, "r1", []string{"r1:chunk:2"}))

	ids, err := idx.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1:chunk:0", "r1:chunk:1", "r1:chunk:2"}, ids)
}

func TestVectorIndex_GetMissing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ids, err := store.VectorIndex().Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestVectorIndex_RemoveAndList(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	idx := store.VectorIndex()

	require.NoError(t, idx.Add(ctx, "r2", []string{"r2:chunk:0"}))
	require.NoError(t, idx.Add(ctx, "r1", []string{"r1:chunk:0", "r1:chunk:1"}))
	require.NoError(t, idx.Add(ctx, "r3", []string{"r3:chunk:0"}))

	require.NoError(t, idx.Remove(ctx, "r3"))
	require.NoError(t, idx.Remove(ctx, "never-indexed"))

	docs, err := idx.DocumentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, docs)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// ==================== ResourceCatalogue Tests ====================

func TestCatalogue_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	cat := store.Catalogue()

	doc := &domain.SourceDocument{
		ID:          "r1",
		Title:       "Intro to Algorithms",
		Description: "Sorting and searching",
		Locator:     "/tmp/algo.md",
		ContentType: "text/markdown",
		Year:        "2024",
		FacultyID:   "fac-eng",
		ModuleID:    "cs101",
	}
	require.NoError(t, cat.Save(ctx, doc))

	got, err := cat.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	doc.Title = "Algorithms, revised"
	require.NoError(t, cat.Save(ctx, doc))

	got, err = cat.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Algorithms, revised", got.Title)
}

func TestCatalogue_GetNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.Catalogue().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogue_SaveRequiresID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.Catalogue().Save(context.Background(), &domain.SourceDocument{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalogue_ExistsMany(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	cat := store.Catalogue()

	require.NoError(t, cat.Save(ctx, &domain.SourceDocument{ID: "r1", Title: "One"}))
	require.NoError(t, cat.Save(ctx, &domain.SourceDocument{ID: "r2", Title: "Two"}))

	exists, err := cat.ExistsMany(ctx, []string{"r1", "r2", "r3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"r1": true, "r2": true, "r3": false}, exists)

	empty, err := cat.ExistsMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCatalogue_ListFindDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	cat := store.Catalogue()

	require.NoError(t, cat.Save(ctx, &domain.SourceDocument{ID: "b", Title: "B", Locator: "/notes.md"}))
	require.NoError(t, cat.Save(ctx, &domain.SourceDocument{ID: "a", Title: "A", Locator: "/notes.md"}))
	require.NoError(t, cat.Save(ctx, &domain.SourceDocument{ID: "c", Title: "C", Locator: "/other.md"}))

	all, err := cat.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)

	found, err := cat.FindByLocator(ctx, "/notes.md")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a", found[0].ID)
	assert.Equal(t, "b", found[1].ID)

	require.NoError(t, cat.Delete(ctx, "a"))
	require.NoError(t, cat.Delete(ctx, "a"))

	_, err = cat.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Helper Function Tests ====================

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_late.up.sql":      {Data: []byte("SELECT 1;")},
		"002_second.up.sql":    {Data: []byte("SELECT 1;")},
		"001_initial.up.sql":   {Data: []byte("SELECT 1;")},
		"001_initial.down.sql": {Data: []byte("SELECT 1;")},
		"notes.up.sql":         {Data: []byte("SELECT 1;")},
		"README.md":            {Data: []byte("docs")},
	}

	all, err := pendingMigrations(fsys, 0)
	require.NoError(t, err)
	assert.Equal(t, []migration{
		{version: 1, name: "001_initial.up.sql"},
		{version: 2, name: "002_second.up.sql"},
		{version: 10, name: "010_late.up.sql"},
	}, all)

	newer, err := pendingMigrations(fsys, 2)
	require.NoError(t, err)
	assert.Equal(t, []migration{{version: 10, name: "010_late.up.sql"}}, newer)
}

func TestMigrate_FailedMigrationRollsBack(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	broken := fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE half_done (id TEXT); NOT VALID SQL;")},
	}
	err := store.migrate(ctx, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")

	var tables int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'half_done'").Scan(&tables))
	assert.Zero(t, tables, "partial migration must not persist")

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestDSN(t *testing.T) {
	got := dsn("/data/index.db")
	assert.Equal(t, "/data/index.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", got)
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0.25, -1.5, 3}
	blob := encodeVector(in)
	assert.Len(t, blob, 12)
	assert.Equal(t, in, decodeVector(blob))
	assert.Equal(t, in, decodeVector(append(blob, 0xff)), "trailing partial float ignored")
	assert.Nil(t, encodeVector(nil))
	assert.Nil(t, decodeVector(nil))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
