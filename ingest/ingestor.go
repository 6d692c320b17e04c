package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	ragagent "github.com/guychikaAL/RagAgent"
)

// maxContentBytes rejects pathological inputs before any parsing work.
const maxContentBytes = 100 << 20 // 100 MB

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithDocumentType sets the document type label stored in metadata and used
// by downstream routing (default "insurance_claim_pdf").
func WithDocumentType(t string) Option {
	return func(ing *Ingestor) { ing.documentType = t }
}

// WithSourceType sets the source type label stored in metadata (default
// "insurance_claim").
func WithSourceType(t string) Option {
	return func(ing *Ingestor) { ing.sourceType = t }
}

// WithExtractor registers an Extractor for a content type, replacing the
// built-in one.
func WithExtractor(ct ContentType, e Extractor) Option {
	return func(ing *Ingestor) { ing.extractors[ct] = e }
}

// WithLogger sets a structured logger. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(ing *Ingestor) { ing.logger = l }
}

// Ingestor turns source files into Documents: extract → normalize →
// metadata. Documents are immutable once returned.
type Ingestor struct {
	documentType string
	sourceType   string
	extractors   map[ContentType]Extractor
	logger       *slog.Logger
}

// NewIngestor creates an Ingestor with extractors for PDF, HTML, markdown,
// and plain text.
func NewIngestor(opts ...Option) *Ingestor {
	ing := &Ingestor{
		documentType: "insurance_claim_pdf",
		sourceType:   "insurance_claim",
		extractors: map[ContentType]Extractor{
			TypePlainText: PlainTextExtractor{},
			TypePDF:       NewPDFExtractor(),
			TypeHTML:      NewHTMLExtractor(),
			TypeMarkdown:  NewMarkdownExtractor(),
		},
	}
	for _, o := range opts {
		o(ing)
	}
	return ing
}

// IngestFile converts file content into a Document, detecting the content
// type from the filename extension.
func (ing *Ingestor) IngestFile(content []byte, filename string) (ragagent.Document, error) {
	if len(content) == 0 {
		return ragagent.Document{}, &ragagent.ErrIngest{Source: filename, Message: "file is empty"}
	}
	if len(content) > maxContentBytes {
		return ragagent.Document{}, &ragagent.ErrIngest{
			Source:  filename,
			Message: fmt.Sprintf("file too large (%d bytes > %d)", len(content), maxContentBytes),
		}
	}

	ct := ContentTypeFromFilename(filename)
	extractor, ok := ing.extractors[ct]
	if !ok {
		extractor = PlainTextExtractor{}
	}

	var text string
	var pageCount int
	if paged, ok := extractor.(PagedExtractor); ok {
		result, err := paged.ExtractPaged(content)
		if err != nil {
			return ragagent.Document{}, &ragagent.ErrIngest{Source: filename, Message: err.Error()}
		}
		text, pageCount = result.Text, result.PageCount
	} else {
		extracted, err := extractor.Extract(content)
		if err != nil {
			return ragagent.Document{}, &ragagent.ErrIngest{Source: filename, Message: err.Error()}
		}
		text = extracted
	}

	return ing.buildDocument(text, filename, pageCount), nil
}

// IngestReader reads all content from r and ingests it.
func (ing *Ingestor) IngestReader(r io.Reader, filename string) (ragagent.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ragagent.Document{}, &ragagent.ErrIngest{Source: filename, Message: "read: " + err.Error()}
	}
	return ing.IngestFile(data, filename)
}

// IngestText ingests already-extracted plain text under a source name.
func (ing *Ingestor) IngestText(text, source string) ragagent.Document {
	return ing.buildDocument(text, source, 0)
}

// buildDocument normalizes extracted text and assembles the Document with
// its metadata. The document ID hashes the source name plus a leading
// content sample, so the same file always gets the same ID across runs.
func (ing *Ingestor) buildDocument(rawText, source string, pageCount int) ragagent.Document {
	text := Normalize(rawText)

	sample := text
	if len(sample) > idSampleLen {
		sample = sample[:idSampleLen]
	}
	name := filepath.Base(source)
	docID := ragagent.DeterministicID(name + ":" + sample)

	words := strings.Fields(text)
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	avgParaLen := 0.0
	if len(paragraphs) > 0 {
		avgParaLen = float64(len(words)) / float64(len(paragraphs))
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))

	doc := ragagent.Document{
		ID:   docID,
		Text: text,
		Metadata: ragagent.DocumentMetadata{
			DocumentID:      docID,
			DocumentType:    ing.documentType,
			SourceType:      ing.sourceType,
			SourceFile:      name,
			Title:           extractTitle(text, stem),
			Language:        detectLanguage(text),
			PageCount:       pageCount,
			TotalCharacters: len(text),
			TotalWords:      len(words),
			TotalParagraphs: len(paragraphs),
			AvgParagraphLen: avgParaLen,
			HasHeadings:     hasHeadings(text),
			NumericDensity:  numericDensity(text),
			DatesDetected:   extractDates(text),
			TimesDetected:   extractTimes(text),
			IngestedAt:      ragagent.NowUnix(),
			IngestRunID:     ragagent.NewRunID(),
		},
	}

	if ing.logger != nil {
		ing.logger.Debug("ingest: document built",
			"document_id", doc.ID,
			"source", name,
			"pages", pageCount,
			"chars", len(text),
			"paragraphs", len(paragraphs))
	}
	return doc
}
