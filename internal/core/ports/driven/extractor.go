package driven

import "context"

// TextExtractor reads plain text from an uploaded resource.
type TextExtractor interface {
	// Extract returns the text at locator. Failures wrap domain.ErrExtraction.
	Extract(ctx context.Context, locator, contentType string) (string, error)
}

// ContentExtractor converts raw bytes of one format into plain text.
// Each extractor handles specific MIME types (e.g., Markdown, DOCX).
type ContentExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns file extensions, used when no MIME type matches.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors return 50-89, fallbacks 1-9.
	Priority() int

	// ExtractText converts content to plain text.
	ExtractText(ctx context.Context, content []byte) (string, error)
}

// ContentLoader fetches the raw bytes a locator points at.
type ContentLoader interface {
	Load(ctx context.Context, locator string) ([]byte, error)
}
