// Package normalisers turns uploaded resources into plain text.
//
// Each subpackage converts one format (plain text, Markdown, HTML, DOCX).
// Registry selects a converter by MIME type, then by file extension, and
// Loader fetches the bytes a locator points at.
package normalisers
