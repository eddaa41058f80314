// Package qdrant implements driven.VectorStore on a Qdrant collection.
//
// Qdrant point IDs must be UUIDs or integers, so each vector item ID is
// mapped to a name-based UUID and the original ID travels in the payload.
package qdrant

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// itemNamespace seeds the name-based point UUIDs.
var itemNamespace = uuid.MustParse("6f0b2a8e-3f44-4c55-9a55-7d2f1c3b9e10")

const (
	payloadItemID      = "item_id"
	payloadDocumentID  = "document_id"
	payloadTitle       = "title"
	payloadDescription = "description"
	payloadContentType = "content_type"
	payloadYear        = "year"
	payloadFacultyID   = "faculty_id"
	payloadModuleID    = "module_id"
	payloadChunkText   = "chunk_text"
	payloadChunkIndex  = "chunk_index"
	payloadTotalChunks = "total_chunks"

	scrollPageSize uint32 = 256
)

// Config holds connection and collection settings.
type Config struct {
	Host       string
	Port       int
	Collection string
	Dimensions int
}

// VectorStore implements driven.VectorStore for Qdrant.
type VectorStore struct {
	client     *qdrant.Client
	collection string
	ready      atomic.Bool
}

var _ driven.VectorStore = (*VectorStore)(nil)

// NewVectorStore connects to Qdrant and creates the collection if it is missing.
func NewVectorStore(ctx context.Context, cfg Config) (*VectorStore, error) {
	if cfg.Collection == "" || cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: qdrant requires a collection and positive dimensions", domain.ErrConfig)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %w", domain.ErrStore, err)
	}

	s := &VectorStore{client: client, collection: cfg.Collection}
	if err := s.ensureCollection(ctx, cfg.Dimensions); err != nil {
		_ = client.Close()
		return nil, err
	}
	s.ready.Store(true)
	return s, nil
}

func (s *VectorStore) ensureCollection(ctx context.Context, dimensions int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %s: %w", domain.ErrStore, s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection %s: %w", domain.ErrStore, s.collection, err)
	}
	return nil
}

// Insert stores a single item.
func (s *VectorStore) Insert(ctx context.Context, item domain.VectorItem) error {
	return s.InsertBatch(ctx, []domain.VectorItem{item})
}

// InsertBatch upserts all items in one request.
func (s *VectorStore) InsertBatch(ctx context.Context, items []domain.VectorItem) error {
	if len(items) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(items))
	for i, item := range items {
		if item.ID == "" || len(item.Vector) == 0 {
			return fmt.Errorf("%w: vector item requires id and vector", domain.ErrInvalidInput)
		}
		points[i] = &qdrant.PointStruct{
			Id:      pointID(item.ID),
			Vectors: qdrant.NewVectors(item.Vector...),
			Payload: toPayload(item.ID, item.Metadata),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: upserting %d points: %w", domain.ErrStore, len(points), err)
	}
	return nil
}

// Delete removes an item. Qdrant treats missing points as a no-op.
func (s *VectorStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelector(pointID(id)),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: deleting %s: %w", domain.ErrStore, id, err)
	}
	return nil
}

// QueryNearest runs a cosine query. Qdrant scores cosine as similarity.
func (s *VectorStore) QueryNearest(ctx context.Context, vector []float32, k int) ([]domain.VectorMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying collection %s: %w", domain.ErrStore, s.collection, err)
	}

	matches := make([]domain.VectorMatch, 0, len(resp))
	for _, scored := range resp {
		id, meta := fromPayload(scored.Payload)
		if id == "" {
			continue
		}
		matches = append(matches, domain.VectorMatch{
			ID:       id,
			Score:    float64(scored.Score),
			Metadata: meta,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

// ListAll scrolls the whole collection and returns item IDs in ascending order.
func (s *VectorStore) ListAll(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		offset *qdrant.PointId
	)

	for {
		resp, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          qdrant.PtrOf(scrollPageSize),
			WithVectors:    qdrant.NewWithVectors(false),
			WithPayload:    qdrant.NewWithPayload(true),
			Offset:         offset,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scrolling collection %s: %w", domain.ErrStore, s.collection, err)
		}
		if len(resp) == 0 {
			break
		}

		for _, point := range resp {
			if id, _ := fromPayload(point.Payload); id != "" {
				ids = append(ids, id)
			}
		}

		if len(resp) < int(scrollPageSize) {
			break
		}
		// The offset point is returned again on the next page; dedupe drops it.
		last := resp[len(resp)-1].Id
		if offset != nil && offset.GetUuid() == last.GetUuid() {
			break
		}
		offset = last
	}

	sort.Strings(ids)
	return dedupe(ids), nil
}

// Count returns the exact number of points.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting collection %s: %w", domain.ErrStore, s.collection, err)
	}
	return int(n), nil
}

// Ready reports whether the collection was ensured and the client is open.
func (s *VectorStore) Ready() bool {
	return s.ready.Load()
}

// Close closes the gRPC connection.
func (s *VectorStore) Close() error {
	s.ready.Store(false)
	return s.client.Close()
}

// pointID maps an item ID to its stable Qdrant point ID.
func pointID(itemID string) *qdrant.PointId {
	return qdrant.NewID(uuid.NewSHA1(itemNamespace, []byte(itemID)).String())
}

func toPayload(itemID string, m domain.ItemMetadata) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		payloadItemID:      qdrant.NewValueString(itemID),
		payloadDocumentID:  qdrant.NewValueString(m.DocumentID),
		payloadTitle:       qdrant.NewValueString(m.Title),
		payloadDescription: qdrant.NewValueString(m.Description),
		payloadContentType: qdrant.NewValueString(m.ContentType),
		payloadYear:        qdrant.NewValueString(m.Year),
		payloadFacultyID:   qdrant.NewValueString(m.FacultyID),
		payloadModuleID:    qdrant.NewValueString(m.ModuleID),
		payloadChunkText:   qdrant.NewValueString(m.ChunkText),
		payloadChunkIndex:  qdrant.NewValueInt(int64(m.ChunkIndex)),
		payloadTotalChunks: qdrant.NewValueInt(int64(m.TotalChunks)),
	}
}

func fromPayload(payload map[string]*qdrant.Value) (string, domain.ItemMetadata) {
	str := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	num := func(key string) int {
		v, ok := payload[key]
		if !ok {
			return 0
		}
		switch v.Kind.(type) {
		case *qdrant.Value_IntegerValue:
			return int(v.GetIntegerValue())
		case *qdrant.Value_DoubleValue:
			return int(v.GetDoubleValue())
		default:
			return 0
		}
	}

	return str(payloadItemID), domain.ItemMetadata{
		DocumentID:  str(payloadDocumentID),
		Title:       str(payloadTitle),
		Description: str(payloadDescription),
		ContentType: str(payloadContentType),
		Year:        str(payloadYear),
		FacultyID:   str(payloadFacultyID),
		ModuleID:    str(payloadModuleID),
		ChunkText:   str(payloadChunkText),
		ChunkIndex:  num(payloadChunkIndex),
		TotalChunks: num(payloadTotalChunks),
	}
}

// dedupe drops adjacent duplicates from a sorted slice.
func dedupe(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
