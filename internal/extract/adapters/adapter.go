package adapters

import (
	"strings"

	"golang.org/x/net/html"
)

// Adapter turns a fetched or read body into contract source text
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter understands the given location/content type
	CanHandle(location string, contentType string) bool

	// ExtractSource returns the contract source embedded in body
	ExtractSource(body []byte) (string, error)
}

// Registry manages source adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a registry with the built-in adapters
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Order matters: explorer API responses are JSON, explorer pages are HTML
	registry.Register(NewEtherscanAdapter())
	registry.Register(NewHTMLAdapter())

	registry.generic = NewPlainAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the first adapter that can handle the source, falling back to plain text
func (r *Registry) FindAdapter(location string, contentType string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(location, contentType) {
			return adapter
		}
	}
	return r.generic
}

// ContentTypeForPath guesses a content type from a file extension
func ContentTypeForPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return "application/json"
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return "text/html"
	default:
		return "text/plain"
	}
}

// BaseAdapter provides HTML helpers shared by adapters
type BaseAdapter struct{}

// ParseHTML parses HTML string into a node tree
func (b *BaseAdapter) ParseHTML(htmlContent string) (*html.Node, error) {
	return html.Parse(strings.NewReader(htmlContent))
}

// ExtractText extracts raw text content from a node, preserving whitespace
func (b *BaseAdapter) ExtractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(b.ExtractText(c))
	}
	return buf.String()
}

// FindAll finds all nodes matching a predicate
func (b *BaseAdapter) FindAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
			return // nested <code> inside <pre> is covered by the parent
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}
