package chunk

import (
	"regexp"
	"strings"
	"unicode"
)

// Section is a logical division within one record's text. Sections exist to
// organize chunk output; they are represented as lightweight title-only
// nodes, not retrieval targets.
type Section struct {
	Title         string
	Text          string
	StartChar     int
	EndChar       int
	PositionIndex int
}

var sectionMarkerRe = regexp.MustCompile(`(?i)SECTION\s+[A-Z0-9]+`)

// Heading heuristic bounds: PDF extraction loses structure, so headings are
// inferred from short ALL-CAPS lines that don't read like sentences.
const (
	headingMaxChars = 80
	headingMinWords = 2
	headingMaxWords = 12
)

// detectSections finds logical sections in record text. Lines carrying an
// explicit SECTION marker or matching the ALL-CAPS heading heuristic become
// section boundaries; each section runs from its heading line to the next
// heading (or end of text). Sections whose resulting text is empty are
// dropped. When nothing matches, the whole record is one "Document"
// section, so the result is never empty.
func detectSections(text string) []Section {
	if strings.TrimSpace(text) == "" {
		return []Section{{Title: "Empty Document"}}
	}

	lines := strings.Split(text, "\n")

	// Character offset of each line start, for section boundary positions.
	offsets := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		offsets[i] = pos
		pos += len(line) + 1
	}

	type marker struct {
		lineNum int
		title   string
	}
	var markers []marker

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if sectionMarkerRe.MatchString(stripped) || isHeadingLine(stripped) {
			markers = append(markers, marker{lineNum: i, title: stripped})
		}
	}

	if len(markers) > 0 {
		var sections []Section
		for idx, m := range markers {
			start := offsets[m.lineNum]
			end := len(text)
			if idx+1 < len(markers) {
				end = offsets[markers[idx+1].lineNum]
			}
			sectionText := strings.TrimSpace(text[start:end])
			if sectionText == "" {
				continue
			}
			sections = append(sections, Section{
				Title:         m.title,
				Text:          sectionText,
				StartChar:     start,
				EndChar:       end,
				PositionIndex: idx,
			})
		}
		if len(sections) > 0 {
			return sections
		}
	}

	trimmed := strings.TrimSpace(text)
	return []Section{{
		Title:   "Document",
		Text:    trimmed,
		EndChar: len(text),
	}}
}

// isHeadingLine reports whether a line looks like an ALL-CAPS heading:
// short, 2–12 words, fully upper-case, and not ending in sentence
// punctuation.
func isHeadingLine(line string) bool {
	if len(line) >= headingMaxChars {
		return false
	}
	words := strings.Fields(line)
	if len(words) < headingMinWords || len(words) > headingMaxWords {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") || strings.HasSuffix(line, ";") {
		return false
	}
	return isUpper(line)
}

// isUpper reports whether the string contains at least one cased letter and
// no lower-case letters (Python str.isupper semantics).
func isUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}
