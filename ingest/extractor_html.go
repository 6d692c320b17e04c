package ingest

import (
	"bytes"
	"fmt"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

var _ Extractor = (*HTMLExtractor)(nil)

// HTMLExtractor extracts readable text from HTML claim documents using the
// readability algorithm (navigation, scripts, and boilerplate dropped).
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTML extractor.
func NewHTMLExtractor() *HTMLExtractor { return &HTMLExtractor{} }

// Extract returns the readable text content of an HTML document.
func (e *HTMLExtractor) Extract(content []byte) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(content), nil)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("html contains no readable text")
	}
	return text, nil
}
