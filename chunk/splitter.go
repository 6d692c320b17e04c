package chunk

import "strings"

// splitParentChunks splits section text into parent-budget chunks using
// greedy paragraph bin-packing: paragraphs accumulate until adding the next
// one would exceed the budget, then the chunk is flushed. A paragraph that
// alone exceeds the budget flushes any pending chunk and is bin-packed at
// sentence granularity instead (no recursion below sentences).
//
// The parent overlap setting is not applied here: paragraph boundaries are
// hard semantic breaks, and repeating a paragraph across chunks duplicates
// whole facts. Overlap is a child-level behavior.
func (p *Pipeline) splitParentChunks(text string) []string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			paragraphs = append(paragraphs, para)
		}
	}

	var chunks []string
	var current []string
	currentSize := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = nil
			currentSize = 0
		}
	}

	for _, para := range paragraphs {
		paraTokens := estimateTokens(para)

		switch {
		case paraTokens > p.parentChunkSize:
			flush()
			chunks = append(chunks, binPackSentences(splitSentences(para), p.parentChunkSize)...)

		case currentSize+paraTokens > p.parentChunkSize && len(current) > 0:
			flush()
			current = []string{para}
			currentSize = paraTokens

		default:
			current = append(current, para)
			currentSize += paraTokens
		}
	}
	flush()

	return chunks
}

// binPackSentences greedily accumulates sentences up to maxTokens per chunk.
// A single sentence over the budget still becomes its own chunk; sentences
// are the atomic unit.
func binPackSentences(sentences []string, maxTokens int) []string {
	var chunks []string
	var current []string
	currentSize := 0

	for _, sent := range sentences {
		sentTokens := estimateTokens(sent)
		if currentSize+sentTokens > maxTokens && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentSize = 0
		}
		current = append(current, sent)
		currentSize += sentTokens
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitChildChunks splits a parent chunk's (already context-prefixed) text
// into child-budget chunks at sentence granularity. When a chunk is flushed
// and its last sentence fits the overlap budget, that sentence is carried
// forward as the first sentence of the next chunk, preserving context
// across the boundary.
func (p *Pipeline) splitChildChunks(text string) []string {
	sentences := splitSentences(text)

	var chunks []string
	var current []string
	currentSize := 0

	for _, sent := range sentences {
		sentTokens := estimateTokens(sent)

		if currentSize+sentTokens > p.childChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			if len(current) > 1 && p.childChunkOverlap > 0 {
				overlapSent := current[len(current)-1]
				overlapTokens := estimateTokens(overlapSent)
				if overlapTokens <= p.childChunkOverlap {
					current = []string{overlapSent, sent}
					currentSize = overlapTokens + sentTokens
					continue
				}
			}
			current = []string{sent}
			currentSize = sentTokens
			continue
		}
		current = append(current, sent)
		currentSize += sentTokens
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitSentences splits text at sentence-ending punctuation followed by
// whitespace and a capital letter. An approximation, but it holds up on
// claim forms without pulling in an NLP segmenter.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		j := i + 1
		for j < len(text) && isSpaceByte(text[j]) {
			j++
		}
		// Require at least one whitespace byte then an upper-case letter.
		if j == i+1 || j >= len(text) || text[j] < 'A' || text[j] > 'Z' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j - 1
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
