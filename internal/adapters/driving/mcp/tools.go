package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string `json:"query" jsonschema:"natural-language description of what to find"`
	FacultyID string `json:"faculty_id,omitempty" jsonschema:"restrict to one faculty, or all"`
	Year      string `json:"year,omitempty" jsonschema:"restrict to one academic year, or all"`
	ModuleID  string `json:"module_id,omitempty" jsonschema:"restrict to one module, or all"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of resources to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single ranked resource.
type SearchResultOutput struct {
	ResourceID    string   `json:"resource_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Locator       string   `json:"locator"`
	FacultyID     string   `json:"faculty_id,omitempty"`
	Year          string   `json:"year,omitempty"`
	ModuleID      string   `json:"module_id,omitempty"`
	Relevance     float64  `json:"relevance"`
	ChunkCount    int      `json:"chunk_count"`
	MatchedChunks []string `json:"matched_chunks,omitempty"`
}

// StatusInput is the (empty) input schema for the index_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the index_status tool.
type StatusOutput struct {
	Ready         bool `json:"ready"`
	ItemCount     int  `json:"item_count"`
	DocumentCount int  `json:"document_count"`
	PendingTasks  int  `json:"pending_tasks"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search over learning resources, optionally filtered by faculty, year and module",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report whether the vector index is ready and how much it holds",
	}, s.handleStatus)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	filters := domain.SearchFilters{
		FacultyID: input.FacultyID,
		Year:      input.Year,
		ModuleID:  input.ModuleID,
	}

	results, err := s.ports.Search.Search(ctx, input.Query, filters, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		doc := results[i].Document
		output.Results[i] = SearchResultOutput{
			ResourceID:    doc.ID,
			Title:         doc.Title,
			Description:   doc.Description,
			Locator:       doc.Locator,
			FacultyID:     doc.FacultyID,
			Year:          doc.Year,
			ModuleID:      doc.ModuleID,
			Relevance:     results[i].RelevanceScore,
			ChunkCount:    results[i].ChunkCount,
			MatchedChunks: results[i].MatchedChunks,
		}
	}

	return nil, output, nil
}

// handleStatus handles the index_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := s.ports.Search.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, toStatusOutput(status), nil
}

func toStatusOutput(status *domain.IndexStatus) StatusOutput {
	return StatusOutput{
		Ready:         status.Ready,
		ItemCount:     status.ItemCount,
		DocumentCount: status.DocumentCount,
		PendingTasks:  status.PendingTasks,
	}
}
