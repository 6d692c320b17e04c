package ragagent

// ChunkLevel identifies a node's position in the claim hierarchy.
type ChunkLevel string

const (
	LevelSection ChunkLevel = "section"
	LevelParent  ChunkLevel = "parent"
	LevelChild   ChunkLevel = "child"
)

// --- Document (ingestion output, segmentation input) ---

// Document is one cleaned, normalized source file produced by the ingest
// package. It is immutable once created; the segmentation and chunking
// stages only read from it.
type Document struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata DocumentMetadata `json:"metadata"`
}

// DocumentMetadata is lightweight ingestion-level metadata. The chunking
// layer enriches nodes with chunk-level metadata; this struct stays small
// and document-scoped.
type DocumentMetadata struct {
	DocumentID   string `json:"document_id"`
	DocumentType string `json:"document_type"`
	SourceType   string `json:"source_type"`
	SourceFile   string `json:"source_file"`
	Title        string `json:"title"`
	Language     string `json:"language"`
	PageCount    int    `json:"page_count"`

	TotalCharacters int     `json:"total_characters"`
	TotalWords      int     `json:"total_words"`
	TotalParagraphs int     `json:"total_paragraphs"`
	AvgParagraphLen float64 `json:"avg_paragraph_length"`
	HasHeadings     bool    `json:"has_headings"`
	NumericDensity  string  `json:"numeric_density"` // "low", "medium", "high"

	DatesDetected []string `json:"dates_detected,omitempty"`
	TimesDetected []string `json:"times_detected,omitempty"`

	// Provenance fields are owned by the ingestion stage and are the only
	// part of the pipeline output that varies between identical runs.
	IngestedAt  int64  `json:"ingested_at"`
	IngestRunID string `json:"ingest_run_id"`
}

// --- Record (one claim) ---

// Record is one independent claim segmented out of a Document. Its text is
// a contiguous, non-overlapping slice of the document text; records are
// ordered by position. Records are immutable once created.
type Record struct {
	RecordID     string `json:"record_id"`
	RecordNumber string `json:"record_number"`
	OrdinalIndex int    `json:"ordinal_index"`
	Title        string `json:"title"`
	Text         string `json:"text"`

	// SubjectName is the claimant name extracted from the record text.
	// Empty when no confident match was found, never guessed.
	SubjectName string `json:"subject_name,omitempty"`

	// Inherited from the parent document.
	DocumentID    string `json:"document_id"`
	DocumentType  string `json:"document_type"`
	SourceType    string `json:"source_type"`
	DocumentTitle string `json:"document_title,omitempty"`
	Language      string `json:"language,omitempty"`

	TotalCharacters int `json:"total_characters"`
	TotalWords      int `json:"total_words"`
}

// --- Node (the stored/retrieved unit) ---

// Node is the serializable unit handed to the indexing collaborator. A node
// is one of three levels: a section (title-only, organizational), a parent
// chunk (semantic unit, recall retrieval), or a child chunk (atomic fact,
// precision retrieval).
//
// Nodes reference each other only by ID, never by pointer, so a node set is
// trivially serializable and records can be processed in parallel.
type Node struct {
	NodeID        string        `json:"node_id"`
	Level         ChunkLevel    `json:"chunk_level"`
	Text          string        `json:"text"` // section nodes hold the title here
	Metadata      NodeMetadata  `json:"metadata"`
	Relationships Relationships `json:"relationships"`

	// Embedding is filled in by the indexing collaborator, never by the
	// chunking core.
	Embedding []float32 `json:"-"`
}

// NodeMetadata carries the full metadata inheritance chain so filtering can
// operate at any hierarchy level without traversal. RecordID and
// RecordNumber are never empty for parent and child chunks.
type NodeMetadata struct {
	RecordID     string `json:"record_id"`
	RecordNumber string `json:"record_number"`
	SubjectName  string `json:"subject_name,omitempty"`
	DocumentID   string `json:"document_id"`
	DocumentType string `json:"document_type"`
	SourceType   string `json:"source_type"`

	ChunkLevel    ChunkLevel `json:"chunk_level"`
	PositionIndex int        `json:"position_index"`
	TokenLength   int        `json:"token_length"`

	// Section-only structural fields.
	Title          string `json:"title,omitempty"`
	StartCharIndex int    `json:"start_char_index,omitempty"`
	EndCharIndex   int    `json:"end_char_index,omitempty"`

	// Parent/child content features for exact-match filtering.
	SemanticTopic   string `json:"semantic_topic,omitempty"`
	ContainsDates   bool   `json:"contains_dates"`
	ContainsTimes   bool   `json:"contains_times"`
	ContainsNumbers bool   `json:"contains_numbers"`

	// Upward references duplicated into metadata so a flat node row is
	// self-describing without the relationships object.
	ParentID  string `json:"parent_id,omitempty"`
	SectionID string `json:"section_id,omitempty"`
}

// Relationships holds the hierarchy edges of a node, by ID.
//
// PARENT is the owning node one level up (section for a parent chunk,
// parent chunk for a child chunk). CHILD is the ordered list of owned nodes
// one level down. SOURCE on a child chunk points at the section for
// diagnostics; it is not an ownership edge.
type Relationships struct {
	Parent string   `json:"PARENT,omitempty"`
	Child  []string `json:"CHILD,omitempty"`
	Source string   `json:"SOURCE,omitempty"`
}
