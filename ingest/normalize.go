package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize cleans raw extracted text into the form the segmentation and
// chunking stages expect: NFC-normalized runes, no control characters,
// single spaces, repaired line breaks, and paragraphs reconstructed as
// blank-line-separated blocks. The text stays whole; this is cleanup, not
// splitting.
func Normalize(raw string) string {
	text := norm.NFC.String(raw)
	text = stripControlChars(text)
	text = collapseSpaces(text)
	text = fixLineBreaks(text)
	return reconstructParagraphs(text)
}

// stripControlChars removes form feeds, carriage returns, and other control
// characters that PDF extraction leaves behind, preserving newlines and tabs.
func stripControlChars(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// collapseSpaces folds runs of spaces and tabs into one space and trims
// each line.
func collapseSpaces(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// fixLineBreaks repairs two PDF extraction artifacts: words hyphenated
// across lines are rejoined without the hyphen, and lines that end
// mid-sentence (a lower-case letter, no closing punctuation) are joined
// with the following line when it also starts lower-case.
func fixLineBreaks(text string) string {
	lines := strings.Split(text, "\n")
	var fixed []string

	i := 0
	for i < len(lines) {
		line := strings.TrimRight(lines[i], " ")

		if line == "" {
			fixed = append(fixed, "")
			i++
			continue
		}

		if strings.HasSuffix(line, "-") && i+1 < len(lines) {
			next := strings.TrimLeft(lines[i+1], " ")
			fixed = append(fixed, strings.TrimSuffix(line, "-")+next)
			i += 2
			continue
		}

		if i+1 < len(lines) && endsMidWord(line) {
			next := strings.TrimLeft(lines[i+1], " ")
			if next != "" && isLowerStart(next) {
				fixed = append(fixed, line+" "+next)
				i += 2
				continue
			}
		}

		fixed = append(fixed, line)
		i++
	}
	return strings.Join(fixed, "\n")
}

func endsMidWord(line string) bool {
	r := lastRune(line)
	if !unicode.IsLetter(r) || !unicode.IsLower(r) {
		return false
	}
	switch {
	case strings.HasSuffix(line, "."),
		strings.HasSuffix(line, "!"),
		strings.HasSuffix(line, "?"),
		strings.HasSuffix(line, ":"),
		strings.HasSuffix(line, ";"):
		return false
	}
	return true
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

func isLowerStart(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

// reconstructParagraphs joins the lines within each blank-line-delimited
// block into one line, producing clean paragraphs separated by exactly one
// blank line. A cap of two consecutive newlines is enforced first so stray
// vertical whitespace doesn't create phantom paragraphs.
func reconstructParagraphs(text string) string {
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	paragraphs := strings.Split(text, "\n\n")
	var rebuilt []string
	for _, para := range paragraphs {
		joined := strings.Join(strings.Fields(para), " ")
		if joined != "" {
			rebuilt = append(rebuilt, joined)
		}
	}
	return strings.Join(rebuilt, "\n\n")
}
