// Package ingest converts source files into clean, normalized Documents
// ready for segmentation. It extracts text (PDF, HTML, markdown, plain
// text), repairs extraction artifacts, reconstructs paragraphs, and attaches
// lightweight document-level metadata. No chunking, no embeddings, no
// retrieval happens here.
package ingest

import (
	"path/filepath"
	"strings"
)

// Extractor converts raw file content to plain text.
type Extractor interface {
	Extract(content []byte) (string, error)
}

// ExtractResult holds extracted text and optional page count for formats
// that have pages.
type ExtractResult struct {
	Text      string
	PageCount int
}

// PagedExtractor is an optional capability for extractors that know page
// boundaries. If an Extractor also implements PagedExtractor, the ingestor
// uses ExtractPaged to record the page count.
type PagedExtractor interface {
	ExtractPaged(content []byte) (ExtractResult, error)
}

// ContentType identifies the MIME type of content for extraction.
type ContentType string

const (
	TypePlainText ContentType = "text/plain"
	TypeHTML      ContentType = "text/html"
	TypeMarkdown  ContentType = "text/markdown"
	TypePDF       ContentType = "application/pdf"
)

// ContentTypeFromExtension maps file extensions to content types.
func ContentTypeFromExtension(ext string) ContentType {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "md", "markdown":
		return TypeMarkdown
	case "html", "htm":
		return TypeHTML
	case "pdf":
		return TypePDF
	default:
		return TypePlainText
	}
}

// ContentTypeFromFilename detects the content type from a filename.
func ContentTypeFromFilename(filename string) ContentType {
	return ContentTypeFromExtension(filepath.Ext(filename))
}

// PlainTextExtractor returns content as-is.
type PlainTextExtractor struct{}

var _ Extractor = PlainTextExtractor{}

func (PlainTextExtractor) Extract(content []byte) (string, error) {
	return string(content), nil
}
