package normalisers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

const (
	// DefaultFetchTimeout bounds a single remote fetch.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxSize is the largest resource the loader reads.
	DefaultMaxSize int64 = 50 << 20
)

// Ensure Loader implements the interface.
var _ driven.ContentLoader = (*Loader)(nil)

// Loader reads local paths, file:// URIs and http(s):// URLs.
type Loader struct {
	client  *http.Client
	maxSize int64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for remote locators.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// WithMaxSize sets the largest resource the loader accepts.
func WithMaxSize(size int64) LoaderOption {
	return func(l *Loader) {
		if size > 0 {
			l.maxSize = size
		}
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:  &http.Client{Timeout: DefaultFetchTimeout},
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the bytes at locator. Failures wrap domain.ErrExtraction.
func (l *Loader) Load(ctx context.Context, locator string) ([]byte, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, fmt.Errorf("%w: empty locator", domain.ErrExtraction)
	}

	u, err := url.Parse(locator)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return l.fetch(ctx, locator)
		case "file":
			return l.readFile(u.Path)
		}
	}
	return l.readFile(locator)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	defer f.Close()

	return l.readLimited(f, path)
}

func (l *Loader) fetch(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrExtraction, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrExtraction, locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", domain.ErrExtraction, locator, resp.StatusCode)
	}

	return l.readLimited(resp.Body, locator)
}

// errTooLarge marks content beyond the configured size.
var errTooLarge = errors.New("resource exceeds size limit")

func (l *Loader) readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtraction, name, err)
	}
	if int64(len(data)) > l.maxSize {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, name, errTooLarge)
	}
	return data, nil
}
