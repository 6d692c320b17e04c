// Package segment splits one ingested Document into independent claim
// Records. Segmentation is not chunking: it separates business entities so
// each claim gets its own hierarchy, metadata, and retrieval scope. The
// chunk package operates on single-claim text only.
//
// Detection is deterministic regex matching over fixed form conventions:
// same input, same output, no training data. When no boundary is found the
// whole document becomes one record; under-segmentation is a safer default
// than losing results.
package segment

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	ragagent "github.com/guychikaAL/RagAgent"
)

// nameScanWindow is how far into a record's text the subject-name
// extraction looks. Claimant fields sit at the top of the form.
const nameScanWindow = 500

// Name field patterns. PDF extraction often removes newlines, so the name
// must be terminated by the next field's label rather than end-of-line.
// Tried in order: two capitalized words, three capitalized words, then a
// newline-terminated two-word fallback for sources that keep line breaks.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Name:\s*([A-Z][a-z]+\s+[A-Z][a-z]+)(?:\s+(?:Account|Address|Phone|Email|Date|Location))`),
	regexp.MustCompile(`Name:\s*([A-Z][a-z]+\s+[A-Z][a-z]+\s+[A-Z][a-z]+)(?:\s+(?:Account|Address|Phone|Email|Date|Location))`),
	regexp.MustCompile(`(?m)Name:\s*([A-Z][a-z]+\s+[A-Z][a-z]+)\s*$`),
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithStrategies replaces the default boundary strategy chain.
func WithStrategies(strategies []BoundaryStrategy) Option {
	return func(s *Segmenter) { s.strategies = strategies }
}

// WithLogger sets a structured logger. When set, the segmenter emits debug
// logs for boundary detection and record creation. If not set, no logs are
// emitted.
func WithLogger(l *slog.Logger) Option {
	return func(s *Segmenter) { s.logger = l }
}

// Segmenter splits documents into claim records. Zero-value configuration
// uses the default insurance-form strategies.
type Segmenter struct {
	strategies []BoundaryStrategy
	logger     *slog.Logger
}

// NewSegmenter creates a Segmenter.
func NewSegmenter(opts ...Option) *Segmenter {
	s := &Segmenter{strategies: DefaultStrategies()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Split segments a document into records. It never fails: a document with
// no recognizable boundaries (including an empty one) yields exactly one
// record spanning the full text. Records whose trimmed text is empty are
// dropped as boundary-detection noise, except for the single-record
// fallback, which is kept even when empty so that every document yields at
// least one record.
func (s *Segmenter) Split(doc ragagent.Document) []ragagent.Record {
	boundaries := DetectBoundaries(doc.Text, s.strategies)

	if s.logger != nil {
		s.logger.Debug("segment: boundaries detected",
			"document_id", doc.ID, "count", len(boundaries))
	}

	if len(boundaries) == 0 {
		return []ragagent.Record{
			s.buildRecord(doc, 0, strings.TrimSpace(doc.Text), "Claim Form", ""),
		}
	}

	records := make([]ragagent.Record, 0, len(boundaries))
	for i, b := range boundaries {
		end := len(doc.Text)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].StartChar
		}
		text := strings.TrimSpace(doc.Text[b.StartChar:end])
		if text == "" {
			continue
		}
		records = append(records, s.buildRecord(doc, i, text, b.Title, b.RecordNumber))
	}

	if len(records) == 0 {
		// All detected slices were empty noise; fall back to one record.
		return []ragagent.Record{
			s.buildRecord(doc, 0, strings.TrimSpace(doc.Text), "Claim Form", ""),
		}
	}
	return records
}

// buildRecord assembles one Record with a deterministic ID and record-scoped
// metadata inherited from the document.
func (s *Segmenter) buildRecord(doc ragagent.Document, ordinal int, text, title, recordNumber string) ragagent.Record {
	recordID := ragagent.DeterministicID(fmt.Sprintf("%s_record_%d", doc.ID, ordinal))
	if recordNumber == "" {
		recordNumber = strconv.Itoa(ordinal + 1)
	}

	rec := ragagent.Record{
		RecordID:        recordID,
		RecordNumber:    recordNumber,
		OrdinalIndex:    ordinal,
		Title:           title,
		Text:            text,
		SubjectName:     ExtractSubjectName(text),
		DocumentID:      doc.ID,
		DocumentType:    doc.Metadata.DocumentType,
		SourceType:      doc.Metadata.SourceType,
		DocumentTitle:   doc.Metadata.Title,
		Language:        doc.Metadata.Language,
		TotalCharacters: len(text),
		TotalWords:      len(strings.Fields(text)),
	}

	if s.logger != nil {
		s.logger.Debug("segment: record created",
			"record_id", rec.RecordID,
			"record_number", rec.RecordNumber,
			"subject_name", rec.SubjectName,
			"chars", rec.TotalCharacters)
	}
	return rec
}

// ExtractSubjectName pulls the claimant name from the top of a record's
// text. It matches a labeled "Name:" field followed by two or three
// capitalized words and stops before the next field label, so "Name: Jon
// Mor Account Number: 1234" yields "Jon Mor". Returns "" when no pattern
// matches with confidence.
//
// The heuristic is tuned to Western two/three-word names and this corpus's
// field labels; other form layouts are an extension point, not covered.
func ExtractSubjectName(text string) string {
	window := text
	if len(window) > nameScanWindow {
		window = window[:nameScanWindow]
	}
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(window); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
