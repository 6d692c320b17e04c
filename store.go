package ragagent

import "context"

// NodeFilter restricts a node search. RecordID is an opaque, exact-match
// key: when set, only nodes belonging to that record are considered, which
// is what keeps retrieval strictly within one claim's scope. Level, when
// set, restricts the search to one hierarchy level.
type NodeFilter struct {
	RecordID string
	Level    ChunkLevel
}

// ScoredNode is a node with a similarity score in [0, 1].
type ScoredNode struct {
	Node
	Score float32
}

// NodeStore abstracts persistence of documents, records, and their node
// hierarchies, with vector search over embedded nodes.
type NodeStore interface {
	// StoreDocument persists a document, its records, and all nodes built
	// from them in one operation. Re-storing the same document replaces its
	// previous node set.
	StoreDocument(ctx context.Context, doc Document, records []Record, nodes []Node) error

	// Node fetches one node by ID.
	Node(ctx context.Context, nodeID string) (Node, error)

	// NodesByRecord returns all nodes of one record, optionally restricted
	// to one level, in position order.
	NodesByRecord(ctx context.Context, recordID string, level ChunkLevel) ([]Node, error)

	// Records returns all records of one document in ordinal order.
	Records(ctx context.Context, documentID string) ([]Record, error)

	// SearchNodes returns the topK nodes most similar to the query
	// embedding, subject to the filter.
	SearchNodes(ctx context.Context, embedding []float32, topK int, filter NodeFilter) ([]ScoredNode, error)

	// Lifecycle.
	Init(ctx context.Context) error
	Close() error
}

// EmbeddingProvider embeds texts into vectors. The chunking core never
// calls it; only the indexing and retrieval collaborators do.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
