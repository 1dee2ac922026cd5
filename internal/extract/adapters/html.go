package adapters

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// HTMLAdapter extracts contract code from block explorer pages.
// Explorers render verified source inside <pre>, <code> or <textarea>.
type HTMLAdapter struct {
	BaseAdapter
	codeTags map[string]bool
}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{
		codeTags: map[string]bool{
			"pre":      true,
			"code":     true,
			"textarea": true,
		},
	}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle accepts HTML content types
func (a *HTMLAdapter) CanHandle(location string, contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// ExtractSource returns the text of all code blocks, or the visible page text when none exist
func (a *HTMLAdapter) ExtractSource(body []byte) (string, error) {
	doc, err := a.ParseHTML(string(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	blocks := a.FindAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && a.codeTags[n.Data]
	})

	if len(blocks) > 0 {
		parts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			parts = append(parts, a.ExtractText(b))
		}
		return strings.Join(parts, "\n"), nil
	}

	return visibleText(doc), nil
}

// visibleText extracts text nodes, skipping scripts and styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}
