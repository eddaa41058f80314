package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

func TestNewServer_RequiresSearch(t *testing.T) {
	for name, ports := range map[string]*Ports{
		"nil ports":  nil,
		"no search":  {},
		"only store": {Resources: &mockResourceService{}},
	} {
		t.Run(name, func(t *testing.T) {
			server, err := NewServer(ports)
			assert.ErrorIs(t, err, ErrMissingSearchService)
			assert.Nil(t, server)
		})
	}
}

func TestNewServer_Version(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, server.Version())

	server, err = NewServer(&Ports{Search: &mockSearchService{}}, WithVersion("1.4.0"))
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", server.Version())

	server, err = NewServer(&Ports{Search: &mockSearchService{}}, WithVersion(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, server.Version())
}

func TestHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		search   *mockSearchService
		wantCode int
		wantBody string
	}{
		{
			name:     "ready",
			search:   &mockSearchService{status: &domain.IndexStatus{Ready: true, ItemCount: 12, DocumentCount: 3}},
			wantCode: http.StatusOK,
			wantBody: `"item_count":12`,
		},
		{
			name:     "not ready",
			search:   &mockSearchService{status: &domain.IndexStatus{}},
			wantCode: http.StatusServiceUnavailable,
			wantBody: `"ready":false`,
		},
		{
			name:     "status failure",
			search:   &mockSearchService{err: domain.ErrStore},
			wantCode: http.StatusServiceUnavailable,
			wantBody: `"error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(&Ports{Search: tt.search})
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{status: &domain.IndexStatus{Ready: true}}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s%s", ln.Addr(), HealthPath))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"ready":true`)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRunHTTP_BadAddress(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	err = server.RunHTTP(context.Background(), "256.0.0.1:bad")
	assert.Error(t, err)
}

// connectClient opens an in-memory client session to server.
func connectClient(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return session
}

// decodeStructured converts a tool's structured content into out.
func decodeStructured(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestSession_ListsTools(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)
	session := connectClient(t, server)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"search", "index_status"}, names)
}

func TestSession_CallSearch(t *testing.T) {
	search := &mockSearchService{results: []domain.SearchResult{{
		Document:       domain.SourceDocument{ID: "res-9", Title: "Cell Biology", Locator: "/uploads/cells.md"},
		RelevanceScore: 0.64,
		ChunkCount:     2,
	}}}
	server, err := NewServer(&Ports{Search: search})
	require.NoError(t, err)
	session := connectClient(t, server)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search",
		Arguments: map[string]any{"query": "mitosis", "module_id": "BIO110", "limit": 3},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out SearchOutput
	decodeStructured(t, res, &out)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "res-9", out.Results[0].ResourceID)
	assert.Equal(t, "mitosis", search.lastQuery)
	assert.Equal(t, "BIO110", search.lastFilters.ModuleID)
	assert.Equal(t, 3, search.lastLimit)
}

func TestSession_ToolErrorIsReported(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{err: errors.New("index offline")}})
	require.NoError(t, err)
	session := connectClient(t, server)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "index_status",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSession_ReadsResourceList(t *testing.T) {
	resources := &mockResourceService{resources: []domain.SourceDocument{
		{ID: "res-1", Title: "Limits", Locator: "/uploads/limits.md"},
	}}
	server, err := NewServer(&Ports{Search: &mockSearchService{}, Resources: resources})
	require.NoError(t, err)
	session := connectClient(t, server)

	res, err := session.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: uriScheme + "resources"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var infos []resourceInfo
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "Limits", infos[0].Title)
}
