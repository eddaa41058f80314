package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// ==================== ConfigStore ====================

func TestConfigStore_SetGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("chunking.size", 800))
	v, ok := store.Get("chunking.size")
	assert.True(t, ok)
	assert.Equal(t, 800, v)

	_, ok = store.Get("missing")
	assert.False(t, ok)

	assert.NoError(t, store.Save())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"embedding.provider": "ollama"}
	store := NewConfigStore(seed)
	seed["embedding.provider"] = "openai"

	v, _ := store.Get("embedding.provider")
	assert.Equal(t, "ollama", v)

	snapshot := store.Values()
	snapshot["embedding.provider"] = "local"
	v, _ = store.Get("embedding.provider")
	assert.Equal(t, "ollama", v)
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("k", n)
			_, _ = store.Get("k")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("k")
	assert.True(t, ok)
}

// ==================== VectorStore ====================

func item(docID string, index int, vector ...float32) domain.VectorItem {
	return domain.VectorItem{
		ID:       domain.VectorItemID(docID, index),
		Vector:   vector,
		Metadata: domain.ItemMetadata{DocumentID: docID, ChunkIndex: index},
	}
}

func TestVectorStore_QueryNearest(t *testing.T) {
	ctx := context.Background()
	vs := NewVectorStore()

	require.NoError(t, vs.InsertBatch(ctx, []domain.VectorItem{
		item("r1", 0, 1, 0),
		item("r2", 0, 0, 1),
		item("r3", 0, 1, 1),
	}))

	matches, err := vs.QueryNearest(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "r1:chunk:0", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
	assert.Equal(t, "r3:chunk:0", matches[1].ID)
	assert.InDelta(t, 0.7071, matches[1].Score, 1e-3)
}

func TestVectorStore_TiesOrderedByID(t *testing.T) {
	ctx := context.Background()
	vs := NewVectorStore()

	require.NoError(t, vs.Insert(ctx, item("z", 0, 1, 0)))
	require.NoError(t, vs.Insert(ctx, item("a", 0, 1, 0)))

	matches, err := vs.QueryNearest(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a:chunk:0", matches[0].ID)
	assert.Equal(t, "z:chunk:0", matches[1].ID)
}

func TestVectorStore_SkipsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	vs := NewVectorStore()

	require.NoError(t, vs.Insert(ctx, item("r1", 0, 1, 0, 0)))
	require.NoError(t, vs.Insert(ctx, item("r2", 0, 1, 0)))

	matches, err := vs.QueryNearest(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "r2:chunk:0", matches[0].ID)
}

func TestVectorStore_BatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	vs := NewVectorStore()

	err := vs.InsertBatch(ctx, []domain.VectorItem{item("r1", 0, 1), item("r1", 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := vs.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVectorStore_InsertCopiesVector(t *testing.T) {
	ctx := context.Background()
	vs := NewVectorStore()

	vec := []float32{1, 0}
	require.NoError(t, vs.Insert(ctx, item("r1", 0, vec...)))
	vec[0] = 0

	got, ok := vs.Get("r1:chunk:0")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0}, got.Vector)
}

func TestVectorStore_DeleteListClose(t *testing.T) {
	ctx := context.Background()
	vs := NewVectorStore()

	require.NoError(t, vs.Insert(ctx, item("b", 0, 1)))
	require.NoError(t, vs.Insert(ctx, item("a", 0, 1)))
	require.NoError(t, vs.Delete(ctx, "missing"))
	require.NoError(t, vs.Delete(ctx, "b:chunk:0"))

	ids, err := vs.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a:chunk:0"}, ids)

	assert.True(t, vs.Ready())
	require.NoError(t, vs.Close())
	assert.False(t, vs.Ready())
	assert.ErrorIs(t, vs.Insert(ctx, item("c", 0, 1)), domain.ErrStore)
}

func TestVectorStore_ZeroQuery(t *testing.T) {
	_, err := NewVectorStore().QueryNearest(context.Background(), []float32{0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== VectorIndex ====================

func TestVectorIndex(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	ids, err := idx.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, ids)

	require.NoError(t, idx.Add(ctx, "r2", []string{"r2:chunk:0"}))
	require.NoError(t, idx.Add(ctx, "r1", []string{"r1:chunk:0"}))
	require.NoError(t, idx.Add(ctx, "r1", []string{"r1:chunk:1"}))
	require.NoError(t, idx.Add(ctx, "r3", nil))

	ids, err = idx.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1:chunk:0", "r1:chunk:1"}, ids)

	docs, err := idx.DocumentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, docs)

	require.NoError(t, idx.Remove(ctx, "r2"))
	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// ==================== Catalogue ====================

func TestCatalogue(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalogue(
		domain.SourceDocument{ID: "b", Title: "B", Locator: "/x.md"},
		domain.SourceDocument{ID: "a", Title: "A", Locator: "/x.md"},
	)

	require.NoError(t, cat.Save(ctx, &domain.SourceDocument{ID: "c", Title: "C", Locator: "/y.md"}))
	assert.ErrorIs(t, cat.Save(ctx, &domain.SourceDocument{}), domain.ErrInvalidInput)

	doc, err := cat.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", doc.Title)

	_, err = cat.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	exists, err := cat.ExistsMany(ctx, []string{"a", "zz"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "zz": false}, exists)

	found, err := cat.FindByLocator(ctx, "/x.md")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a", found[0].ID)

	require.NoError(t, cat.Delete(ctx, "a"))
	all, err := cat.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "c", all[1].ID)
}
