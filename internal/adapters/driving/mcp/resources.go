package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for LearnBox resources.
	uriScheme = "learnbox://"
)

// resourceInfo is the JSON shape of a catalogued resource.
type resourceInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Locator     string `json:"locator"`
	ContentType string `json:"content_type,omitempty"`
	FacultyID   string `json:"faculty_id,omitempty"`
	Year        string `json:"year,omitempty"`
	ModuleID    string `json:"module_id,omitempty"`
}

func toResourceInfo(doc domain.SourceDocument) resourceInfo {
	return resourceInfo{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Locator:     doc.Locator,
		ContentType: doc.ContentType,
		FacultyID:   doc.FacultyID,
		Year:        doc.Year,
		ModuleID:    doc.ModuleID,
	}
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "resources",
		Name:        "resources",
		Description: "All catalogued learning resources",
		MIMEType:    "application/json",
	}, s.handleResourceList)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "resources/{resourceId}",
		Name:        "resource",
		Description: "A single learning resource record",
		MIMEType:    "application/json",
	}, s.handleResource)
}

// handleResourceList returns every catalogued resource.
func (s *Server) handleResourceList(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Resources == nil {
		return jsonResult(req.Params.URI, []resourceInfo{})
	}

	docs, err := s.ports.Resources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}

	infos := make([]resourceInfo, len(docs))
	for i := range docs {
		infos[i] = toResourceInfo(docs[i])
	}
	return jsonResult(req.Params.URI, infos)
}

// handleResource returns one resource record.
func (s *Server) handleResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Resources == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractResourceID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Resources.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting resource: %w", err)
	}
	return jsonResult(req.Params.URI, toResourceInfo(*doc))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractResourceID extracts the ID from a URI like learnbox://resources/{resourceId}.
func extractResourceID(uri string) string {
	const prefix = uriScheme + "resources/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
