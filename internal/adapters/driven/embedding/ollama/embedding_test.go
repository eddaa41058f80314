package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

func newTestServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/embed":
			requests.Add(1)
			var req embedRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Model == "missing" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"model not found"}`))
				return
			}
			resp := embedResponse{}
			for i := range req.Input {
				resp.Embeddings = append(resp.Embeddings, []float64{float64(len(req.Input[i])), 1, 0})
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultDimensions, s.Dimensions())
	assert.Equal(t, DefaultBatchSize, s.batchSize)
}

func TestEmbed_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer server.Close()

	_, err := NewEmbeddingService(Config{BaseURL: server.URL}).Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Contains(t, err.Error(), "got 0 embeddings for 1 inputs")
}

func TestEmbed(t *testing.T) {
	var requests atomic.Int32
	server := newTestServer(t, &requests)
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL + "/", Dimensions: 3})

	vec, err := s.Embed(context.Background(), "abcd")

	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1, 0}, vec)
	assert.Equal(t, int32(1), requests.Load())
}

func TestEmbedBatch_SplitsRequests(t *testing.T) {
	var requests atomic.Int32
	server := newTestServer(t, &requests)
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL, BatchSize: 2, RequestsPerSecond: 1000})

	vecs, err := s.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})

	require.NoError(t, err)
	require.Len(t, vecs, 5)
	for i, vec := range vecs {
		assert.Equal(t, float32(i+1), vec[0], "order must be preserved")
	}
	assert.Equal(t, int32(3), requests.Load())
}

func TestEmbed_ErrorWrapsEmbedding(t *testing.T) {
	var requests atomic.Int32
	server := newTestServer(t, &requests)
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL, Model: "missing"})

	_, err := s.Embed(context.Background(), "text")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Contains(t, err.Error(), "model not found")
}

func TestEmbed_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	s := NewEmbeddingService(Config{BaseURL: url})

	_, err := s.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbedding)

	assert.ErrorIs(t, s.Ping(context.Background()), domain.ErrEmbedding)
}

func TestPing(t *testing.T) {
	var requests atomic.Int32
	server := newTestServer(t, &requests)
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL})

	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
}
