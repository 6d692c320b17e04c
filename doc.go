// Package ragagent structures multi-claim insurance PDF documents into an
// addressable, queryable node hierarchy for retrieval-augmented question
// answering.
//
// The core of the module is deterministic: one ingested Document is split
// into independent claim Records, and each Record is decomposed into a
// three-level hierarchy of Nodes (section → parent chunk → child chunk) with
// stable hash-derived IDs, cross-level relationship links, and metadata that
// downstream retrieval uses for both semantic grouping and exact-match
// filtering by claim.
//
// # Pipeline
//
//	ingest.Ingestor   PDF/HTML/markdown/plain text to Document
//	segment.Segmenter Document to []Record (one per claim)
//	chunk.Pipeline    Record to []Node (sections, parents, children)
//	NodeStore         persists and searches the node set
//
// Each stage is side-effect-free with respect to shared state. Records from
// the same document may be processed in parallel: node IDs are namespaced by
// their record, so concurrent execution cannot collide.
//
// # Quick Start
//
//	ing := ingest.NewIngestor()
//	doc, err := ing.IngestFile(pdfBytes, "claims_batch.pdf")
//
//	seg := segment.NewSegmenter()
//	pipeline, err := chunk.New()
//
//	store := sqlite.New("claims.db")
//	records := seg.Split(doc)
//	var nodes []Node
//	for _, rec := range records {
//		nodes = append(nodes, pipeline.BuildNodes(rec)...)
//	}
//	err = store.StoreDocument(ctx, doc, records, nodes)
//
// # Core Interfaces
//
// The root package defines the contracts the subpackages implement:
//
//   - [NodeStore]: persistence with record-scoped vector search
//   - [EmbeddingProvider]: text-to-vector embedding
//   - [Retriever]: precision (child-level) and recall (parent-level) search
//   - [Tracer]: optional span creation, OTEL-backed via the observer package
package ragagent
