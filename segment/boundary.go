package segment

import (
	"regexp"
	"sort"
)

// Boundary marks where one claim record begins in a document's text.
type Boundary struct {
	RecordNumber string // ordinal from the form header, e.g. "1", "20"
	StartChar    int
	Title        string
}

// BoundaryStrategy scans document text for record boundaries. Strategies
// are tried in order; the first one that yields at least one match wins.
// A strategy returning nil simply hands off to the next one.
type BoundaryStrategy struct {
	Name string
	Scan func(text string) []Boundary
}

// dedupeWindow collapses boundaries whose start positions are within this
// many characters of the previous accepted boundary. Multiple patterns can
// match the same logical boundary at slightly different offsets.
const dedupeWindow = 50

var (
	formHeaderRe  = regexp.MustCompile(`(?i)AUTO\s+CLAIM\s+FORM\s+#(\d+)`)
	claimNumberRe = regexp.MustCompile(`(?i)Claim\s+Number:\s*([A-Z0-9]+)`)
	firstSectionRe = regexp.MustCompile(`(?i)^SECTION\s+1\s*[–-]\s*CLAIMANT\s+INFORMATION`)
)

// DefaultStrategies returns the ordered strategy chain for insurance claim
// forms:
//
//  1. repeated "AUTO CLAIM FORM #N" headers (the primary multi-claim marker)
//  2. labeled "Claim Number:" fields
//  3. a "SECTION 1 – CLAIMANT INFORMATION" heading anchored at the very
//     start of the text (single-claim documents without a form header)
//
// Adding or reordering detection heuristics is a matter of editing this
// slice, not the detector.
func DefaultStrategies() []BoundaryStrategy {
	return []BoundaryStrategy{
		{Name: "form_header", Scan: scanFormHeaders},
		{Name: "claim_number_field", Scan: scanClaimNumberFields},
		{Name: "first_section_marker", Scan: scanFirstSectionMarker},
	}
}

func scanFormHeaders(text string) []Boundary {
	var boundaries []Boundary
	for _, m := range formHeaderRe.FindAllStringSubmatchIndex(text, -1) {
		boundaries = append(boundaries, Boundary{
			RecordNumber: text[m[2]:m[3]],
			StartChar:    m[0],
			Title:        text[m[0]:m[1]],
		})
	}
	return boundaries
}

func scanClaimNumberFields(text string) []Boundary {
	var boundaries []Boundary
	for _, m := range claimNumberRe.FindAllStringSubmatchIndex(text, -1) {
		number := text[m[2]:m[3]]
		boundaries = append(boundaries, Boundary{
			RecordNumber: number,
			StartChar:    m[0],
			Title:        "Claim " + number,
		})
	}
	return boundaries
}

func scanFirstSectionMarker(text string) []Boundary {
	if firstSectionRe.MatchString(text) {
		return []Boundary{{RecordNumber: "1", StartChar: 0, Title: "Claim Form"}}
	}
	return nil
}

// DetectBoundaries runs the strategy chain over the document text and
// returns the winning strategy's boundaries sorted by position, with
// near-duplicate positions collapsed (keeping the first). An empty result
// means the whole document is one record, never an error.
func DetectBoundaries(text string, strategies []BoundaryStrategy) []Boundary {
	var boundaries []Boundary
	for _, s := range strategies {
		if boundaries = s.Scan(text); len(boundaries) > 0 {
			break
		}
	}
	if len(boundaries) == 0 {
		return nil
	}

	sort.SliceStable(boundaries, func(i, j int) bool {
		return boundaries[i].StartChar < boundaries[j].StartChar
	})

	unique := boundaries[:0:0]
	lastPos := -1
	for _, b := range boundaries {
		if lastPos < 0 || b.StartChar-lastPos > dedupeWindow {
			unique = append(unique, b)
			lastPos = b.StartChar
		}
	}
	return unique
}
