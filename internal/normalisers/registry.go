package normalisers

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
	"github.com/learnbox/learnbox-search/internal/logger"
	"github.com/learnbox/learnbox-search/internal/normalisers/docx"
	"github.com/learnbox/learnbox-search/internal/normalisers/html"
	"github.com/learnbox/learnbox-search/internal/normalisers/markdown"
	"github.com/learnbox/learnbox-search/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry loads a resource and converts it with the best matching extractor.
type Registry struct {
	mu         sync.RWMutex
	loader     driven.ContentLoader
	extractors []driven.ContentExtractor
}

// NewRegistry creates an empty registry that loads content through loader.
func NewRegistry(loader driven.ContentLoader) *Registry {
	return &Registry{loader: loader}
}

// NewDefaultRegistry creates a registry with every built-in extractor.
func NewDefaultRegistry(loader driven.ContentLoader) *Registry {
	r := NewRegistry(loader)
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	return r
}

// Register adds an extractor, keeping the list ordered by priority.
func (r *Registry) Register(extractor driven.ContentExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, extractor)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// SupportedMIMETypes returns every MIME type some extractor handles, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	sort.Strings(types)
	return types
}

// Extract loads the resource at locator and returns its text.
// Selection is by MIME type first, then by the locator's file extension.
func (r *Registry) Extract(ctx context.Context, locator, contentType string) (string, error) {
	extractor := r.selectExtractor(locator, contentType)
	if extractor == nil {
		return "", fmt.Errorf("%w: %w: %q (%s)", domain.ErrExtraction, domain.ErrUnsupportedType, contentType, locator)
	}

	content, err := r.loader.Load(ctx, locator)
	if err != nil {
		return "", err
	}

	logger.Debug("extracting %s with %T (%d bytes)", locator, extractor, len(content))
	return extractor.ExtractText(ctx, content)
}

// selectExtractor returns the highest priority match, or nil.
func (r *Registry) selectExtractor(locator, contentType string) driven.ContentExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if mediaType := baseMediaType(contentType); mediaType != "" {
		for _, e := range r.extractors {
			if contains(e.SupportedMIMETypes(), mediaType) {
				return e
			}
		}
	}

	if ext := locatorExtension(locator); ext != "" {
		for _, e := range r.extractors {
			if contains(e.SupportedExtensions(), ext) {
				return e
			}
		}
	}

	return nil
}

// baseMediaType drops parameters such as charset and lowercases the type.
func baseMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return mediaType
}

// locatorExtension returns the lowercase extension of a path or URL.
func locatorExtension(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return strings.ToLower(path.Ext(u.Path))
	}
	return strings.ToLower(filepath.Ext(locator))
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
