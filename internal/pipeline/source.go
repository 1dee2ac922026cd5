package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/rugscan/internal/cache"
	"github.com/ppiankov/rugscan/internal/extract/adapters"
)

// StdinLocation names standard input as a source
const StdinLocation = "-"

// Source is contract text resolved from a file, stdin or URL
type Source struct {
	Location string // As given by the caller
	Adapter  string // Adapter that produced Text
	Cached   bool   // Body came from the fetch cache
	Text     string
}

// SourceLoader resolves locations to contract text
type SourceLoader struct {
	fetcher  *Fetcher
	registry *adapters.Registry
	cache    cache.Cache // nil disables caching
	stdin    io.Reader
	maxBytes int64
}

// NewSourceLoader creates a loader; cache may be nil
func NewSourceLoader(fetcher *Fetcher, c cache.Cache, maxBytes int64) *SourceLoader {
	return &SourceLoader{
		fetcher:  fetcher,
		registry: adapters.NewRegistry(),
		cache:    c,
		stdin:    os.Stdin,
		maxBytes: maxBytes,
	}
}

// IsURL reports whether a location is fetched over HTTP
func IsURL(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads the location and extracts contract text with the matching adapter
func (l *SourceLoader) Load(ctx context.Context, location string) (*Source, error) {
	var (
		body        []byte
		contentType string
		cached      bool
		err         error
	)

	switch {
	case location == StdinLocation:
		body, err = readLimited(l.stdin, l.maxBytes)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		contentType = "text/plain"
	case IsURL(location):
		body, contentType, cached, err = l.fetch(ctx, location)
		if err != nil {
			return nil, err
		}
	default:
		body, err = readFileLimited(location, l.maxBytes)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		contentType = adapters.ContentTypeForPath(location)
	}

	adapter := l.registry.FindAdapter(location, contentType)
	text, err := adapter.ExtractSource(body)
	if err != nil {
		return nil, fmt.Errorf("extract source (%s): %w", adapter.Name(), err)
	}

	return &Source{
		Location: location,
		Adapter:  adapter.Name(),
		Cached:   cached,
		Text:     text,
	}, nil
}

// fetch returns the body for a URL, consulting the cache first.
// Cached entries store the content type on the first line.
func (l *SourceLoader) fetch(ctx context.Context, rawURL string) ([]byte, string, bool, error) {
	key := cache.CacheKey(rawURL)
	if l.cache != nil {
		if val, ok := l.cache.Get(key); ok {
			contentType, body, _ := strings.Cut(string(val), "\n")
			return []byte(body), contentType, true, nil
		}
	}

	result, err := l.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, "", false, fmt.Errorf("fetch source: %w", err)
	}

	if l.cache != nil {
		entry := append([]byte(sanitizeContentType(result.ContentType)+"\n"), result.Body...)
		if err := l.cache.Set(key, entry, 0); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to cache %s: %v\n", rawURL, err)
		}
	}

	return result.Body, result.ContentType, false, nil
}

func sanitizeContentType(ct string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(ct)
}

func readFileLimited(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readLimited(f, maxBytes)
}
