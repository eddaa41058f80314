package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
	"github.com/learnbox/learnbox-search/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	// maxExcerpts is how many chunk excerpts a result carries.
	maxExcerpts = 2

	// excerptLength is the excerpt size in characters.
	excerptLength = 200
)

// pendingCounter reports lifecycle queue depth for Status.
type pendingCounter interface {
	Pending() int
}

// documentGroup accumulates the candidates of one document.
type documentGroup struct {
	documentID string
	maxScore   float64
	sumScore   float64
	count      int
	excerpts   []string
	relevance  float64
}

// SearchService is the query engine: embed, retrieve, filter, group, rank, join.
type SearchService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	repo     driven.ResourceRepository
	settings domain.QuerySettings

	index   driven.ResourceVectorIndex
	pending pendingCounter
}

// NewSearchService creates a query engine. Zero-valued settings fall back to
// the defaults in domain.DefaultAppSettings; that includes an AverageWeight of
// zero, so a max-only blend is not expressible.
func NewSearchService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	repo driven.ResourceRepository,
	settings domain.QuerySettings,
) *SearchService {
	defaults := domain.DefaultAppSettings().Search
	if settings.DefaultLimit <= 0 {
		settings.DefaultLimit = defaults.DefaultLimit
	}
	if settings.Oversample <= 0 {
		settings.Oversample = defaults.Oversample
	}
	if settings.AverageWeight <= 0 || settings.AverageWeight > 1 {
		settings.AverageWeight = defaults.AverageWeight
	}
	return &SearchService{
		embedder: embedder,
		store:    store,
		repo:     repo,
		settings: settings,
	}
}

// SetVectorIndex enables DocumentCount in Status.
func (s *SearchService) SetVectorIndex(index driven.ResourceVectorIndex) {
	s.index = index
}

// SetPendingCounter enables PendingTasks in Status.
func (s *SearchService) SetPendingCounter(p pendingCounter) {
	s.pending = p
}

// Search returns up to limit documents ranked by blended chunk similarity.
func (s *SearchService) Search(
	ctx context.Context, query string, filters domain.SearchFilters, limit int,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q, filters: %+v", query, filters)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	if limit <= 0 {
		limit = s.settings.DefaultLimit
	}

	if s.embedder == nil {
		return nil, unavailable("embedding query", fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable))
	}
	if s.store == nil || !s.store.Ready() {
		return nil, unavailable("querying vectors", fmt.Errorf("%w: vector store not ready", domain.ErrStore))
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbedding) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		return nil, unavailable("embedding query", err)
	}

	k := limit * s.settings.Oversample
	candidates, err := s.store.QueryNearest(ctx, queryVec, k)
	if err != nil {
		if !errors.Is(err, domain.ErrStore) {
			err = fmt.Errorf("%w: %w", domain.ErrStore, err)
		}
		return nil, unavailable("querying vectors", err)
	}
	logger.Debug("Candidates: %d (k=%d)", len(candidates), k)

	groups := s.rank(candidates, filters)
	if len(groups) > limit {
		groups = groups[:limit]
	}
	logger.Debug("Ranked documents: %d", len(groups))

	results, err := s.join(ctx, groups)
	if err != nil {
		return nil, err
	}
	logger.Info("Final results: %d", len(results))
	return results, nil
}

// rank filters candidates, groups them per document and orders the groups
// by relevance descending, then document ID ascending.
func (s *SearchService) rank(candidates []domain.VectorMatch, filters domain.SearchFilters) []*documentGroup {
	byDoc := make(map[string]*documentGroup)
	var order []*documentGroup

	for _, c := range candidates {
		if !filters.Matches(c.Metadata) {
			continue
		}
		docID := c.Metadata.DocumentID
		if docID == "" {
			if parsed, _, err := domain.ParseVectorItemID(c.ID); err == nil {
				docID = parsed
			} else {
				continue
			}
		}

		g, ok := byDoc[docID]
		if !ok {
			g = &documentGroup{documentID: docID, maxScore: c.Score}
			byDoc[docID] = g
			order = append(order, g)
		}
		if c.Score > g.maxScore {
			g.maxScore = c.Score
		}
		g.sumScore += c.Score
		g.count++
		if len(g.excerpts) < maxExcerpts {
			g.excerpts = append(g.excerpts, excerpt(c.Metadata.ChunkText, excerptLength))
		}
	}

	w := s.settings.AverageWeight
	for _, g := range order {
		g.relevance = w*(g.sumScore/float64(g.count)) + (1-w)*g.maxScore
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].relevance != order[j].relevance {
			return order[i].relevance > order[j].relevance
		}
		return order[i].documentID < order[j].documentID
	})
	return order
}

// join attaches canonical records and drops documents that no longer exist.
func (s *SearchService) join(ctx context.Context, groups []*documentGroup) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(groups))
	if len(groups) == 0 {
		return results, nil
	}

	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.documentID
	}

	exists, err := s.repo.ExistsMany(ctx, ids)
	if err != nil {
		return nil, unavailable("checking resources", err)
	}

	for _, g := range groups {
		if !exists[g.documentID] {
			logger.Debug("Dropping %s: no longer in repository", g.documentID)
			continue
		}
		doc, err := s.repo.Get(ctx, g.documentID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, unavailable("loading resource "+g.documentID, err)
		}
		results = append(results, domain.SearchResult{
			Document:       *doc,
			RelevanceScore: g.relevance,
			ChunkCount:     g.count,
			MatchedChunks:  g.excerpts,
		})
	}
	return results, nil
}

// Status reports readiness and index size.
func (s *SearchService) Status(ctx context.Context) (*domain.IndexStatus, error) {
	status := &domain.IndexStatus{}
	if s.pending != nil {
		status.PendingTasks = s.pending.Pending()
	}
	if s.store == nil || !s.store.Ready() {
		return status, nil
	}
	status.Ready = true

	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, wrapStore(err, "counting items")
	}
	status.ItemCount = n

	if s.index != nil {
		docs, err := s.index.Count(ctx)
		if err != nil {
			return nil, wrapStore(err, "counting documents")
		}
		status.DocumentCount = docs
	}
	return status, nil
}

// unavailable wraps an infrastructure failure so callers can tell it from
// an empty result.
func unavailable(action string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrSearchUnavailable, action, err)
}

// excerpt returns the first n characters of text, trimmed.
func excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n]))
}
