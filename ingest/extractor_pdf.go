package ingest

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Compile-time interface checks.
var _ Extractor = (*PDFExtractor)(nil)
var _ PagedExtractor = (*PDFExtractor)(nil)

// PDFExtractor extracts plain text from PDF documents page by page,
// stripping page-number artifacts as it goes.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

// Extract extracts plain text from a PDF document.
func (e *PDFExtractor) Extract(content []byte) (string, error) {
	result, err := e.ExtractPaged(content)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractPaged extracts text from every page, joined with blank lines so
// page boundaries survive into paragraph detection. Pages that fail to
// extract are skipped rather than failing the whole document.
func (e *PDFExtractor) ExtractPaged(content []byte) (ExtractResult, error) {
	if len(content) == 0 {
		return ExtractResult{}, fmt.Errorf("empty PDF content")
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ExtractResult{}, fmt.Errorf("open pdf: %w", err)
	}

	pageCount := r.NumPage()
	if pageCount == 0 {
		return ExtractResult{}, fmt.Errorf("pdf has no pages")
	}

	var text strings.Builder
	for i := 1; i <= pageCount; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = removePageNumbers(strings.TrimSpace(pageText))
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}

	extracted := strings.TrimSpace(text.String())
	if extracted == "" {
		return ExtractResult{}, fmt.Errorf("pdf contains no extractable text (may need OCR)")
	}
	return ExtractResult{Text: extracted, PageCount: pageCount}, nil
}

var (
	leadingPageNumRe  = regexp.MustCompile(`^\s*\d+\s*\n`)
	trailingPageNumRe = regexp.MustCompile(`\n\s*\d+\s*$`)
	pageLabelRe       = regexp.MustCompile(`(?i)\bPage\s+\d+\b`)
)

// removePageNumbers strips standalone page numbers and "Page N" labels.
// They are layout artifacts, not content.
func removePageNumbers(text string) string {
	text = leadingPageNumRe.ReplaceAllString(text, "")
	text = trailingPageNumRe.ReplaceAllString(text, "")
	return pageLabelRe.ReplaceAllString(text, "")
}
