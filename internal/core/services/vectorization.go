package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
	"github.com/learnbox/learnbox-search/internal/logger"
)

// Ensure VectorizationManager implements the interface.
var _ driving.VectorizationService = (*VectorizationManager)(nil)

// DefaultMinContentLength is the shortest extracted text, in characters, worth indexing.
const DefaultMinContentLength = 50

// VectorizationManager turns documents into vector items and keeps the
// ResourceVectorIndex in step with the store. Callers must serialise calls
// per document ID; the Dispatcher does this for lifecycle events.
type VectorizationManager struct {
	extractor driven.TextExtractor
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	index     driven.ResourceVectorIndex

	minContentLength int

	mu     sync.RWMutex
	states map[string]domain.VectorizationState
}

// NewVectorizationManager creates a manager. A non-positive minContentLength
// uses DefaultMinContentLength.
func NewVectorizationManager(
	extractor driven.TextExtractor,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	index driven.ResourceVectorIndex,
	minContentLength int,
) *VectorizationManager {
	if minContentLength <= 0 {
		minContentLength = DefaultMinContentLength
	}
	return &VectorizationManager{
		extractor:        extractor,
		chunker:          chunker,
		embedder:         embedder,
		store:            store,
		index:            index,
		minContentLength: minContentLength,
		states:           make(map[string]domain.VectorizationState),
	}
}

// State returns the lifecycle state of a document.
func (m *VectorizationManager) State(documentID string) domain.VectorizationState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.states[documentID]; ok {
		return s
	}
	return domain.StateNone
}

func (m *VectorizationManager) setState(documentID string, state domain.VectorizationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state == domain.StateNone {
		delete(m.states, documentID)
		return
	}
	m.states[documentID] = state
}

// Vectorize indexes a document. A document that already has items is
// replaced through Revectorize so no stale chunk outlives the call.
func (m *VectorizationManager) Vectorize(ctx context.Context, doc domain.SourceDocument) (*domain.VectorizeResult, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	existing, err := m.index.Get(ctx, doc.ID)
	if err != nil {
		return nil, wrapStore(err, "reading vector index")
	}
	if len(existing) > 0 {
		logger.Debug("vectorize %s: %d items already indexed, revectorizing", doc.ID, len(existing))
		return m.Revectorize(ctx, doc)
	}

	logger.Debug("vectorize %s: start", doc.ID)
	m.setState(doc.ID, domain.StateVectorizing)

	items, err := m.stage(ctx, doc)
	if err != nil {
		m.setState(doc.ID, domain.StateFailed)
		return nil, err
	}
	if items == nil {
		m.setState(doc.ID, domain.StateNone)
		logger.Info("vectorize %s: skipped, %s", doc.ID, domain.ReasonInsufficientContent)
		return &domain.VectorizeResult{Success: false, Reason: domain.ReasonInsufficientContent}, nil
	}

	if err := m.commit(ctx, doc.ID, items); err != nil {
		m.setState(doc.ID, domain.StateFailed)
		return nil, err
	}

	m.setState(doc.ID, domain.StateVectorized)
	logger.Info("vectorize %s: stored %d items", doc.ID, len(items))
	return &domain.VectorizeResult{Success: true, ChunkCount: len(items)}, nil
}

// Revectorize stages a complete new generation before touching the store,
// then removes the old generation and writes the new one. Content that is
// now too short still removes the old generation.
func (m *VectorizationManager) Revectorize(ctx context.Context, doc domain.SourceDocument) (*domain.VectorizeResult, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	logger.Debug("revectorize %s: start", doc.ID)
	previous := m.State(doc.ID)
	m.setState(doc.ID, domain.StateVectorizing)

	items, err := m.stage(ctx, doc)
	if err != nil {
		// The old generation is untouched, so it stays searchable.
		if previous == domain.StateVectorized {
			m.setState(doc.ID, domain.StateVectorized)
		} else {
			m.setState(doc.ID, domain.StateFailed)
		}
		return nil, err
	}

	deleted, err := m.devectorize(ctx, doc.ID)
	if err != nil {
		m.setState(doc.ID, domain.StateFailed)
		return nil, err
	}

	if items == nil {
		m.setState(doc.ID, domain.StateNone)
		logger.Info("revectorize %s: removed %d items, %s", doc.ID, deleted, domain.ReasonInsufficientContent)
		return &domain.VectorizeResult{
			Success:      false,
			Reason:       domain.ReasonInsufficientContent,
			DeletedCount: deleted,
		}, nil
	}

	if err := m.commit(ctx, doc.ID, items); err != nil {
		m.setState(doc.ID, domain.StateFailed)
		return nil, err
	}

	m.setState(doc.ID, domain.StateVectorized)
	logger.Info("revectorize %s: replaced %d items with %d", doc.ID, deleted, len(items))
	return &domain.VectorizeResult{Success: true, ChunkCount: len(items), DeletedCount: deleted}, nil
}

// Devectorize removes every item of a document. A document with no index
// entry yields a successful result with nothing deleted.
func (m *VectorizationManager) Devectorize(ctx context.Context, documentID string) (*domain.VectorizeResult, error) {
	deleted, err := m.devectorize(ctx, documentID)
	if err != nil {
		return nil, err
	}
	m.setState(documentID, domain.StateNone)
	logger.Debug("devectorize %s: deleted %d items", documentID, deleted)
	return &domain.VectorizeResult{Success: true, DeletedCount: deleted}, nil
}

func (m *VectorizationManager) devectorize(ctx context.Context, documentID string) (int, error) {
	ids, err := m.index.Get(ctx, documentID)
	if err != nil {
		return 0, wrapStore(err, "reading vector index")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	for _, id := range ids {
		if err := m.store.Delete(ctx, id); err != nil {
			// The index entry is kept so a retry can finish the job.
			return 0, wrapStore(err, "deleting "+id)
		}
	}

	if err := m.index.Remove(ctx, documentID); err != nil {
		return 0, wrapStore(err, "removing vector index entry")
	}
	return len(ids), nil
}

// stage extracts, chunks and embeds a document without writing anything.
// A nil slice with a nil error means the content is too short to index.
func (m *VectorizationManager) stage(ctx context.Context, doc domain.SourceDocument) ([]domain.VectorItem, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}

	text, err := m.extractor.Extract(ctx, doc.Locator, doc.ContentType)
	if err != nil {
		if !errors.Is(err, domain.ErrExtraction) {
			err = fmt.Errorf("%w: %w", domain.ErrExtraction, err)
		}
		return nil, fmt.Errorf("extracting %s: %w", doc.ID, err)
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < m.minContentLength {
		return nil, nil
	}

	chunks, err := m.chunker.Process(ctx, doc.ID, text)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", doc.ID, err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbedding) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		return nil, fmt.Errorf("embedding %s: %w", doc.ID, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: embedding %s: got %d vectors for %d chunks",
			domain.ErrEmbedding, doc.ID, len(vectors), len(chunks))
	}

	items := make([]domain.VectorItem, len(chunks))
	for i, c := range chunks {
		items[i] = domain.VectorItem{
			ID:       domain.VectorItemID(doc.ID, c.Index),
			Vector:   vectors[i],
			Metadata: domain.NewItemMetadata(doc, c),
		}
	}
	return items, nil
}

// commit writes a staged generation and records it in the index. On any
// failure the items written by this call are removed again.
func (m *VectorizationManager) commit(ctx context.Context, documentID string, items []domain.VectorItem) error {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	if err := m.store.InsertBatch(ctx, items); err != nil {
		m.rollback(documentID, ids)
		return wrapStore(err, "inserting items for "+documentID)
	}

	if err := m.index.Add(ctx, documentID, ids); err != nil {
		m.rollback(documentID, ids)
		return wrapStore(err, "indexing items for "+documentID)
	}
	return nil
}

// rollback removes a partial generation. It runs on a fresh context so a
// cancelled or timed out task still cleans up after itself.
func (m *VectorizationManager) rollback(documentID string, ids []string) {
	ctx := context.Background()
	for _, id := range ids {
		if err := m.store.Delete(ctx, id); err != nil {
			logger.Error("rollback %s: deleting %s: %v", documentID, id, err)
		}
	}
	if err := m.index.Remove(ctx, documentID); err != nil {
		logger.Error("rollback %s: removing index entry: %v", documentID, err)
	}
	logger.Warn("rollback %s: removed %d partial items", documentID, len(ids))
}

// wrapStore classifies err as a store failure unless it already is one.
func wrapStore(err error, action string) error {
	if errors.Is(err, domain.ErrStore) {
		return fmt.Errorf("%s: %w", action, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, action, err)
}
