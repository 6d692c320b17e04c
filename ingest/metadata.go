package ingest

import (
	"regexp"
	"strings"
)

// idSampleLen is how much of the cleaned text participates in the document
// ID hash. Name + leading content is stable but unique enough.
const idSampleLen = 1000

// maxDetectedEntities caps the dates/times lists carried in metadata.
const maxDetectedEntities = 10

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`),
	regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}\b`),
}

var timePattern = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM|am|pm)?\b`)

// extractDates returns unique date-like strings in order of appearance.
func extractDates(text string) []string {
	var dates []string
	for _, re := range datePatterns {
		dates = append(dates, re.FindAllString(text, -1)...)
	}
	return uniqueInOrder(dates, maxDetectedEntities)
}

// extractTimes returns unique time-like strings in order of appearance.
func extractTimes(text string) []string {
	return uniqueInOrder(timePattern.FindAllString(text, -1), maxDetectedEntities)
}

func uniqueInOrder(values []string, limit int) []string {
	seen := make(map[string]bool, len(values))
	var unique []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
		if len(unique) == limit {
			break
		}
	}
	return unique
}

// numericDensity classifies how number-heavy the text is. Forms and
// financial documents read "high", prose reads "low".
func numericDensity(text string) string {
	if len(text) == 0 {
		return "low"
	}
	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	density := float64(digits) / float64(len(text))
	switch {
	case density < 0.05:
		return "low"
	case density < 0.15:
		return "medium"
	default:
		return "high"
	}
}

// hasHeadings reports whether the text contains several short lines that
// look like section headings (ALL CAPS or Title Case).
func hasHeadings(text string) bool {
	headingCount := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > 60 {
			continue
		}
		words := strings.Fields(line)
		if len(words) == 0 || len(words) > 8 {
			continue
		}
		if line == strings.ToUpper(line) && line != strings.ToLower(line) {
			headingCount++
			continue
		}
		titleWords := 0
		for _, w := range words {
			if w[0] >= 'A' && w[0] <= 'Z' {
				titleWords++
			}
		}
		if float64(titleWords) >= float64(len(words))*0.7 {
			headingCount++
		}
	}
	return headingCount >= 3
}

// extractTitle picks the first non-empty line when it reads like a title,
// otherwise falls back to the filename stem.
func extractTitle(text, fallback string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) < 100 && !strings.HasSuffix(line, ".") &&
			!strings.HasSuffix(line, ",") && !strings.HasSuffix(line, ";") {
			return line
		}
		break
	}
	return fallback
}

// detectLanguage is a placeholder heuristic; the corpus is English-only.
func detectLanguage(string) string {
	return "en"
}
