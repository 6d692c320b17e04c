package ragagent

import (
	"context"
	"fmt"
	"sort"
)

// RetrievalResult is a scored piece of claim content.
type RetrievalResult struct {
	Content      string  `json:"content"`
	Score        float32 `json:"score"`
	NodeID       string  `json:"node_id"`
	RecordID     string  `json:"record_id"`
	RecordNumber string  `json:"record_number"`
	ChunkLevel   string  `json:"chunk_level"`
}

// Retriever searches one record's node hierarchy and returns ranked results.
type Retriever interface {
	Retrieve(ctx context.Context, query string, recordID string, topK int) ([]RetrievalResult, error)
}

// RetrieverOption configures a NodeRetriever.
type RetrieverOption func(*retrieverConfig)

type retrieverConfig struct {
	minScore  float32
	autoMerge bool
}

// WithMinScore sets the minimum similarity threshold. Results below it are
// dropped before returning. Default is 0 (no filtering).
func WithMinScore(score float32) RetrieverOption {
	return func(c *retrieverConfig) { c.minScore = score }
}

// WithAutoMerge makes the retriever return the parent chunk of each matched
// child chunk instead of the child itself, deduplicated and re-ranked by the
// best child score. This trades precision for surrounding context.
func WithAutoMerge() RetrieverOption {
	return func(c *retrieverConfig) { c.autoMerge = true }
}

// NodeRetriever retrieves claim content from a NodeStore. Child chunks are
// the search surface; with auto-merge enabled, matches are widened to their
// parent chunks for recall-oriented queries.
type NodeRetriever struct {
	store     NodeStore
	embedding EmbeddingProvider
	cfg       retrieverConfig
}

var _ Retriever = (*NodeRetriever)(nil)

// NewNodeRetriever creates a NodeRetriever backed by the given store and
// embedding provider.
func NewNodeRetriever(store NodeStore, emb EmbeddingProvider, opts ...RetrieverOption) *NodeRetriever {
	var cfg retrieverConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &NodeRetriever{store: store, embedding: emb, cfg: cfg}
}

// Retrieve embeds the query and searches child chunks within recordID.
// An empty recordID searches across all records.
func (r *NodeRetriever) Retrieve(ctx context.Context, query string, recordID string, topK int) ([]RetrievalResult, error) {
	if topK <= 0 {
		topK = 5
	}

	vecs, err := r.embedding.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: empty result")
	}

	filter := NodeFilter{RecordID: recordID, Level: LevelChild}
	scored, err := r.store.SearchNodes(ctx, vecs[0], topK, filter)
	if err != nil {
		return nil, fmt.Errorf("search nodes: %w", err)
	}

	if r.cfg.autoMerge {
		scored, err = r.mergeToParents(ctx, scored)
		if err != nil {
			return nil, err
		}
	}

	results := make([]RetrievalResult, 0, len(scored))
	for _, sn := range scored {
		if sn.Score < r.cfg.minScore {
			continue
		}
		results = append(results, RetrievalResult{
			Content:      sn.Node.Text,
			Score:        sn.Score,
			NodeID:       sn.Node.NodeID,
			RecordID:     sn.Node.Metadata.RecordID,
			RecordNumber: sn.Node.Metadata.RecordNumber,
			ChunkLevel:   string(sn.Node.Level),
		})
	}
	return results, nil
}

// mergeToParents replaces each child hit with its parent chunk, keeping the
// best child score per parent.
func (r *NodeRetriever) mergeToParents(ctx context.Context, hits []ScoredNode) ([]ScoredNode, error) {
	best := make(map[string]float32)
	order := make([]string, 0, len(hits))

	for _, h := range hits {
		parentID := h.Node.Relationships.Parent
		if parentID == "" {
			continue
		}
		if _, seen := best[parentID]; !seen {
			order = append(order, parentID)
		}
		if h.Score > best[parentID] {
			best[parentID] = h.Score
		}
	}

	merged := make([]ScoredNode, 0, len(order))
	for _, id := range order {
		node, err := r.store.Node(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch parent %s: %w", id, err)
		}
		merged = append(merged, ScoredNode{Node: node, Score: best[id]})
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	return merged, nil
}
