package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/learnbox/learnbox-search/internal/adapters/driven/storage/memory"
	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// --- Extraction ---

// mockExtractor returns canned text per locator.
type mockExtractor struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
	calls int
}

func newMockExtractor() *mockExtractor {
	return &mockExtractor{texts: make(map[string]string)}
}

func (m *mockExtractor) set(locator, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts[locator] = text
}

func (m *mockExtractor) Extract(_ context.Context, locator, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	text, ok := m.texts[locator]
	if !ok {
		return "", errors.New("no such file: " + locator)
	}
	return text, nil
}

// --- Embedding ---

// mockEmbedder maps text onto a small vector: one axis per keyword, plus a
// constant axis so no vector is zero.
type mockEmbedder struct {
	mu       sync.Mutex
	keywords []string
	err      error
	short    bool // return one vector too few from EmbedBatch
	batches  int
}

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func newMockEmbedder(keywords ...string) *mockEmbedder {
	return &mockEmbedder{keywords: keywords}
}

func (m *mockEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(m.keywords)+1)
	for i, kw := range m.keywords {
		vec[i] = float32(strings.Count(lower, kw))
	}
	vec[len(m.keywords)] = 0.1
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.vector(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return len(m.keywords) + 1 }
func (m *mockEmbedder) ModelName() string { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error { return nil }

// --- Vector store ---

// faultyStore wraps the memory store and injects failures.
type faultyStore struct {
	*memory.VectorStore
	insertErr error
	deleteErr error
	queryErr  error
	notReady  bool
}

func newFaultyStore() *faultyStore {
	return &faultyStore{VectorStore: memory.NewVectorStore()}
}

func (f *faultyStore) InsertBatch(ctx context.Context, items []domain.VectorItem) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.VectorStore.InsertBatch(ctx, items)
}

func (f *faultyStore) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.VectorStore.Delete(ctx, id)
}

func (f *faultyStore) QueryNearest(ctx context.Context, vector []float32, k int) ([]domain.VectorMatch, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.VectorStore.QueryNearest(ctx, vector, k)
}

func (f *faultyStore) Ready() bool {
	return !f.notReady && f.VectorStore.Ready()
}

// cannedStore answers every query with fixed matches.
type cannedStore struct {
	matches []domain.VectorMatch
	lastK   int
}

var _ driven.VectorStore = (*cannedStore)(nil)

func (c *cannedStore) Insert(context.Context, domain.VectorItem) error { return nil }
func (c *cannedStore) InsertBatch(context.Context, []domain.VectorItem) error { return nil }
func (c *cannedStore) Delete(context.Context, string) error { return nil }
func (c *cannedStore) ListAll(context.Context) ([]string, error) { return nil, nil }
func (c *cannedStore) Count(context.Context) (int, error) { return len(c.matches), nil }
func (c *cannedStore) Ready() bool { return true }
func (c *cannedStore) Close() error { return nil }

func (c *cannedStore) QueryNearest(_ context.Context, _ []float32, k int) ([]domain.VectorMatch, error) {
	c.lastK = k
	if len(c.matches) > k {
		return c.matches[:k], nil
	}
	return c.matches, nil
}

// match builds a candidate for a document chunk.
func match(doc domain.SourceDocument, chunk int, score float64) domain.VectorMatch {
	meta := domain.NewItemMetadata(doc, domain.Chunk{Index: chunk, Text: doc.Title + " chunk"})
	return domain.VectorMatch{
		ID:       domain.VectorItemID(doc.ID, chunk),
		Score:    score,
		Metadata: meta,
	}
}

// --- Vector index ---

// faultyIndex wraps the memory index and injects failures.
type faultyIndex struct {
	*memory.VectorIndex
	addErr error
}

func newFaultyIndex() *faultyIndex {
	return &faultyIndex{VectorIndex: memory.NewVectorIndex()}
}

func (f *faultyIndex) Add(ctx context.Context, documentID string, itemIDs []string) error {
	if f.addErr != nil {
		return f.addErr
	}
	return f.VectorIndex.Add(ctx, documentID, itemIDs)
}

// --- Repository ---

// failingRepo fails every lookup.
type failingRepo struct {
	err error
}

func (f failingRepo) Get(context.Context, string) (*domain.SourceDocument, error) {
	return nil, f.err
}

func (f failingRepo) ExistsMany(context.Context, []string) (map[string]bool, error) {
	return nil, f.err
}

// --- Chunking ---

// failingChunker fails every call.
type failingChunker struct{}

func (failingChunker) Process(context.Context, string, string) ([]domain.Chunk, error) {
	return nil, errors.New("chunker exploded")
}
