package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

var _ driven.ContentExtractor = (*Extractor)(nil)

// hidden elements contribute no text.
var hidden = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
}

// breaks start a new output line when opened or closed.
var breaks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Td: true, atom.Th: true, atom.Caption: true,
	atom.Blockquote: true, atom.Pre: true, atom.Figcaption: true,
	atom.Main: true, atom.Section: true, atom.Article: true, atom.Aside: true,
	atom.Header: true, atom.Footer: true, atom.Nav: true,
}

// Extractor reads the visible text of HTML pages.
type Extractor struct{}

// New creates an HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (e *Extractor) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

func (e *Extractor) Priority() int {
	return 50
}

// ExtractText walks the token stream and returns one line per block element
// with whitespace collapsed. Entities are decoded.
func (e *Extractor) ExtractText(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	var out lines
	depth := 0 // open hidden elements
	z := xhtml.NewTokenizer(bytes.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: html: %w", domain.ErrExtraction, err)
			}
			return out.String(), nil

		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := atom.Lookup(name)
			if tag == atom.Body {
				depth = 0 // an unclosed <head> ends here
			}
			if hidden[tag] {
				switch {
				case tt == xhtml.StartTagToken:
					depth++
				case tt == xhtml.EndTagToken && depth > 0:
					depth--
				}
				continue
			}
			if breaks[tag] {
				out.breakLine()
			}

		case xhtml.TextToken:
			if depth == 0 {
				out.current.Write(z.Text())
			}

		case xhtml.CommentToken, xhtml.DoctypeToken:
		}
	}
}

// lines accumulates text into non-empty, whitespace-collapsed lines.
type lines struct {
	done    []string
	current bytes.Buffer
}

func (l *lines) breakLine() {
	if line := strings.Join(strings.Fields(l.current.String()), " "); line != "" {
		l.done = append(l.done, line)
	}
	l.current.Reset()
}

func (l *lines) String() string {
	l.breakLine()
	return strings.Join(l.done, "\n")
}
