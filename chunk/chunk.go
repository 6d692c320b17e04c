// Package chunk transforms one claim Record into a three-level node
// hierarchy: sections (logical divisions), parent chunks (250–600 estimated
// tokens, semantic units for recall retrieval), and child chunks (80–150
// estimated tokens, atomic facts for precision retrieval).
//
// The pipeline creates no embeddings and performs no I/O. All chunk text is
// final and deterministic here: re-running on the same record reproduces an
// identical node set, IDs included.
package chunk

import (
	"log/slog"

	ragagent "github.com/guychikaAL/RagAgent"
)

// charsPerToken is the token-estimation ratio (~4 characters per English
// token). This is an approximation, not a real tokenizer; it exists only to
// bound chunk sizes cheaply and deterministically.
const charsPerToken = 4

// minChunkChars is the minimum trimmed length for a parent or child chunk.
// Anything shorter is heuristic-splitting noise, not content.
const minChunkChars = 10

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParentChunkSize sets the target token budget for parent chunks
// (default 400).
func WithParentChunkSize(n int) Option {
	return func(p *Pipeline) { p.parentChunkSize = n }
}

// WithParentChunkOverlap sets the overlap budget for parent chunks (default
// 50). Accepted for symmetry with the child level but not applied by the
// paragraph-level splitter; see the package tests for the documented
// behavior.
func WithParentChunkOverlap(n int) Option {
	return func(p *Pipeline) { p.parentChunkOverlap = n }
}

// WithChildChunkSize sets the target token budget for child chunks
// (default 120).
func WithChildChunkSize(n int) Option {
	return func(p *Pipeline) { p.childChunkSize = n }
}

// WithChildChunkOverlap sets the sentence-overlap budget for child chunks
// (default 20). When a flushed chunk's last sentence fits this budget it is
// carried forward as the first sentence of the next chunk.
func WithChildChunkOverlap(n int) Option {
	return func(p *Pipeline) { p.childChunkOverlap = n }
}

// WithLogger sets a structured logger. When set, the pipeline emits debug
// logs per stage. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// Pipeline builds hierarchical nodes from single-claim records. It holds no
// state between calls and is safe for concurrent use across records.
type Pipeline struct {
	parentChunkSize    int
	parentChunkOverlap int
	childChunkSize     int
	childChunkOverlap  int
	logger             *slog.Logger
}

// New creates a Pipeline. Non-positive chunk sizes and negative overlaps
// are rejected eagerly; the pipeline itself never fails mid-run.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		parentChunkSize:    400,
		parentChunkOverlap: 50,
		childChunkSize:     120,
		childChunkOverlap:  20,
	}
	for _, o := range opts {
		o(p)
	}
	if p.parentChunkSize <= 0 {
		return nil, &ragagent.ErrConfig{Field: "parent_chunk_size", Message: "must be positive"}
	}
	if p.childChunkSize <= 0 {
		return nil, &ragagent.ErrConfig{Field: "child_chunk_size", Message: "must be positive"}
	}
	if p.parentChunkOverlap < 0 {
		return nil, &ragagent.ErrConfig{Field: "parent_chunk_overlap", Message: "must not be negative"}
	}
	if p.childChunkOverlap < 0 {
		return nil, &ragagent.ErrConfig{Field: "child_chunk_overlap", Message: "must not be negative"}
	}
	return p, nil
}

// BuildNodes builds the full node hierarchy for one record and returns the
// validated flat node list: each section node, then its child chunks, then
// its parent chunks, in position order.
//
// For every record the result contains ≥1 section node; parent and child
// chunks exist wherever the section text survives validation. Empty record
// text degrades to a single empty section and zero chunks, never an error.
func (p *Pipeline) BuildNodes(record ragagent.Record) []ragagent.Node {
	sections := detectSections(record.Text)

	var all []ragagent.Node
	for _, section := range sections {
		sectionNode := p.buildSectionNode(section, record)
		secIdx := len(all)
		all = append(all, sectionNode)

		parents := p.buildParentNodes(section, sectionNode.NodeID, record)
		parentIDs := make([]string, len(parents))

		for i := range parents {
			children := p.buildChildNodes(&parents[i], sectionNode.NodeID, record)
			childIDs := make([]string, len(children))
			for j, c := range children {
				childIDs[j] = c.NodeID
			}
			parents[i].Relationships.Child = childIDs
			parentIDs[i] = parents[i].NodeID
			all = append(all, children...)
		}

		// Section → parent links are set only after all parents exist.
		all[secIdx].Relationships.Child = parentIDs
		all = append(all, parents...)
	}

	nodes := Validate(all)

	if p.logger != nil {
		p.logger.Debug("chunk: hierarchy built",
			"record_id", record.RecordID,
			"sections", len(sections),
			"nodes", len(nodes))
	}
	return nodes
}

// estimateTokens approximates token count from character length. Minimum 1.
func estimateTokens(text string) int {
	n := len(text) / charsPerToken
	if n < 1 {
		return 1
	}
	return n
}
