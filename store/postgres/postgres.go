// Package postgres implements ragagent.NodeStore using PostgreSQL with
// pgvector for native vector similarity search over claim chunk embeddings.
//
// Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ragagent "github.com/guychikaAL/RagAgent"
)

// Store implements ragagent.NodeStore backed by PostgreSQL with pgvector.
// Vector search uses HNSW indexes with cosine distance.
type Store struct {
	pool *pgxpool.Pool
	cfg  pgConfig
}

// pgConfig holds store configuration set via Option functions.
type pgConfig struct {
	embeddingDimension int // 0 = untyped vector column
	hnswM              int // 0 = pgvector default (16)
	hnswEFConstruction int // 0 = pgvector default (64)
	hnswEFSearch       int // 0 = pgvector default (40)
}

// Option configures a PostgreSQL Store.
type Option func(*pgConfig)

// WithEmbeddingDimension sets the vector column dimension (e.g. 1536, 768).
// When set, CREATE TABLE uses vector(N) instead of untyped vector, enabling
// better index optimization and catching dimension mismatches at insert time.
// Only affects new table creation (no ALTER on existing tables).
func WithEmbeddingDimension(dim int) Option {
	return func(c *pgConfig) { c.embeddingDimension = dim }
}

// WithHNSWM sets the HNSW m parameter (max connections per node).
// Higher values improve recall at the cost of memory. Default: pgvector's 16.
func WithHNSWM(m int) Option {
	return func(c *pgConfig) { c.hnswM = m }
}

// WithEFConstruction sets the HNSW ef_construction parameter (build-time
// candidate list size). Higher values improve index quality at the cost of
// slower builds. Default: pgvector's 64.
func WithEFConstruction(ef int) Option {
	return func(c *pgConfig) { c.hnswEFConstruction = ef }
}

// WithEFSearch sets the HNSW ef_search parameter (query-time candidate list
// size). Higher values improve recall at the cost of latency. Default:
// pgvector's 40. Applied during Init().
func WithEFSearch(ef int) Option {
	return func(c *pgConfig) { c.hnswEFSearch = ef }
}

var _ ragagent.NodeStore = (*Store)(nil)

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	var cfg pgConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Store{pool: pool, cfg: cfg}
}

// vectorType returns "vector" or "vector(N)" depending on config.
func (s *Store) vectorType() string {
	if s.cfg.embeddingDimension > 0 {
		return fmt.Sprintf("vector(%d)", s.cfg.embeddingDimension)
	}
	return "vector"
}

// hnswWithClause returns the WITH (...) clause for HNSW index creation,
// or an empty string if no tuning params are set.
func (s *Store) hnswWithClause() string {
	var parts []string
	if s.cfg.hnswM > 0 {
		parts = append(parts, fmt.Sprintf("m = %d", s.cfg.hnswM))
	}
	if s.cfg.hnswEFConstruction > 0 {
		parts = append(parts, fmt.Sprintf("ef_construction = %d", s.cfg.hnswEFConstruction))
	}
	if len(parts) == 0 {
		return ""
	}
	return " WITH (" + strings.Join(parts, ", ") + ")"
}

// Init creates the pgvector extension, all required tables, and indexes.
// Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	vtype := s.vectorType()
	hnswWith := s.hnswWithClause()

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			metadata JSONB NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			record_number TEXT NOT NULL,
			ordinal_index INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			subject_name TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS records_document_idx ON records(document_id)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			record_id TEXT NOT NULL,
			chunk_level TEXT NOT NULL,
			position_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			metadata JSONB NOT NULL,
			relationships JSONB NOT NULL,
			embedding %s
		)`, vtype),
		`CREATE INDEX IF NOT EXISTS nodes_record_idx ON nodes(record_id, chunk_level)`,
		`CREATE INDEX IF NOT EXISTS nodes_document_idx ON nodes(document_id)`,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS nodes_embedding_idx ON nodes USING hnsw (embedding vector_cosine_ops)%s`, hnswWith),
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: init: %w", err)
		}
	}

	if s.cfg.hnswEFSearch > 0 {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("SET hnsw.ef_search = %d", s.cfg.hnswEFSearch)); err != nil {
			return fmt.Errorf("postgres: set ef_search: %w", err)
		}
	}

	return nil
}

// StoreDocument inserts a document, its records, and all their nodes in a
// single transaction. Any previous node set for the document is replaced,
// so re-indexing the same document is idempotent.
func (s *Store) StoreDocument(ctx context.Context, doc ragagent.Document, records []ragagent.Record, nodes []ragagent.Node) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("postgres: marshal document metadata: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO documents (id, text, metadata)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (id) DO UPDATE SET
		   text = EXCLUDED.text,
		   metadata = EXCLUDED.metadata`,
		doc.ID, doc.Text, string(metaJSON))
	if err != nil {
		return fmt.Errorf("postgres: insert document: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM nodes WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("postgres: clear nodes: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM records WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("postgres: clear records: %w", err)
	}

	for _, rec := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO records (id, document_id, record_number, ordinal_index, title, subject_name, text)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rec.RecordID, rec.DocumentID, rec.RecordNumber, rec.OrdinalIndex, rec.Title, rec.SubjectName, rec.Text)
		if err != nil {
			return fmt.Errorf("postgres: insert record %s: %w", rec.RecordID, err)
		}
	}

	for _, node := range nodes {
		mdJSON, err := json.Marshal(node.Metadata)
		if err != nil {
			return fmt.Errorf("postgres: marshal node metadata: %w", err)
		}
		relJSON, err := json.Marshal(node.Relationships)
		if err != nil {
			return fmt.Errorf("postgres: marshal node relationships: %w", err)
		}

		if len(node.Embedding) > 0 {
			embStr := serializeEmbedding(node.Embedding)
			_, err = tx.Exec(ctx,
				`INSERT INTO nodes (id, document_id, record_id, chunk_level, position_index, text, metadata, relationships, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9::vector)`,
				node.NodeID, node.Metadata.DocumentID, node.Metadata.RecordID, string(node.Level),
				node.Metadata.PositionIndex, node.Text, string(mdJSON), string(relJSON), embStr)
		} else {
			_, err = tx.Exec(ctx,
				`INSERT INTO nodes (id, document_id, record_id, chunk_level, position_index, text, metadata, relationships, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, NULL)`,
				node.NodeID, node.Metadata.DocumentID, node.Metadata.RecordID, string(node.Level),
				node.Metadata.PositionIndex, node.Text, string(mdJSON), string(relJSON))
		}
		if err != nil {
			return fmt.Errorf("postgres: insert node %s: %w", node.NodeID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

// Node fetches one node by ID.
func (s *Store) Node(ctx context.Context, nodeID string) (ragagent.Node, error) {
	var node ragagent.Node
	var level string
	var mdJSON, relJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, chunk_level, text, metadata, relationships FROM nodes WHERE id = $1`,
		nodeID,
	).Scan(&node.NodeID, &level, &node.Text, &mdJSON, &relJSON)
	if err == pgx.ErrNoRows {
		return ragagent.Node{}, fmt.Errorf("postgres: node %s: not found", nodeID)
	}
	if err != nil {
		return ragagent.Node{}, fmt.Errorf("postgres: get node %s: %w", nodeID, err)
	}
	node.Level = ragagent.ChunkLevel(level)
	if err := json.Unmarshal(mdJSON, &node.Metadata); err != nil {
		return ragagent.Node{}, fmt.Errorf("postgres: unmarshal metadata: %w", err)
	}
	if err := json.Unmarshal(relJSON, &node.Relationships); err != nil {
		return ragagent.Node{}, fmt.Errorf("postgres: unmarshal relationships: %w", err)
	}
	return node, nil
}

// NodesByRecord returns all nodes of one record, optionally restricted to a
// level, ordered by level then position.
func (s *Store) NodesByRecord(ctx context.Context, recordID string, level ragagent.ChunkLevel) ([]ragagent.Node, error) {
	query := `SELECT id, chunk_level, text, metadata, relationships
		 FROM nodes WHERE record_id = $1`
	args := []any{recordID}
	if level != "" {
		query += ` AND chunk_level = $2`
		args = append(args, string(level))
	}
	query += ` ORDER BY chunk_level, position_index`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: nodes by record: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// Records returns all records of one document in ordinal order.
func (s *Store) Records(ctx context.Context, documentID string) ([]ragagent.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, document_id, record_number, ordinal_index, title, subject_name, text
		 FROM records WHERE document_id = $1 ORDER BY ordinal_index`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("postgres: get records: %w", err)
	}
	defer rows.Close()

	var records []ragagent.Record
	for rows.Next() {
		var rec ragagent.Record
		if err := rows.Scan(&rec.RecordID, &rec.DocumentID, &rec.RecordNumber,
			&rec.OrdinalIndex, &rec.Title, &rec.SubjectName, &rec.Text); err != nil {
			return nil, fmt.Errorf("postgres: scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SearchNodes performs vector similarity search over embedded nodes using
// pgvector's cosine distance operator with HNSW index. Filter clauses are
// pushed into the query so the index scan stays scoped.
func (s *Store) SearchNodes(ctx context.Context, embedding []float32, topK int, filter ragagent.NodeFilter) ([]ragagent.ScoredNode, error) {
	embStr := serializeEmbedding(embedding)

	where := `embedding IS NOT NULL`
	args := []any{embStr, topK}
	p := 3
	if filter.RecordID != "" {
		where += fmt.Sprintf(` AND record_id = $%d`, p)
		args = append(args, filter.RecordID)
		p++
	}
	if filter.Level != "" {
		where += fmt.Sprintf(` AND chunk_level = $%d`, p)
		args = append(args, string(filter.Level))
	}

	q := `SELECT id, chunk_level, text, metadata, relationships,
	        1 - (embedding <=> $1::vector) AS score
	 FROM nodes
	 WHERE ` + where + `
	 ORDER BY embedding <=> $1::vector
	 LIMIT $2`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: search nodes: %w", err)
	}
	defer rows.Close()

	var results []ragagent.ScoredNode
	for rows.Next() {
		var node ragagent.Node
		var level string
		var mdJSON, relJSON []byte
		var score float32
		if err := rows.Scan(&node.NodeID, &level, &node.Text, &mdJSON, &relJSON, &score); err != nil {
			return nil, fmt.Errorf("postgres: scan node: %w", err)
		}
		node.Level = ragagent.ChunkLevel(level)
		if err := json.Unmarshal(mdJSON, &node.Metadata); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal metadata: %w", err)
		}
		if err := json.Unmarshal(relJSON, &node.Relationships); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal relationships: %w", err)
		}
		results = append(results, ragagent.ScoredNode{Node: node, Score: score})
	}
	return results, rows.Err()
}

// Close is a no-op. The caller owns the pool and manages its lifecycle.
func (s *Store) Close() error {
	return nil
}

func scanNodes(rows pgx.Rows) ([]ragagent.Node, error) {
	var nodes []ragagent.Node
	for rows.Next() {
		var node ragagent.Node
		var level string
		var mdJSON, relJSON []byte
		if err := rows.Scan(&node.NodeID, &level, &node.Text, &mdJSON, &relJSON); err != nil {
			return nil, fmt.Errorf("postgres: scan node: %w", err)
		}
		node.Level = ragagent.ChunkLevel(level)
		if err := json.Unmarshal(mdJSON, &node.Metadata); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal metadata: %w", err)
		}
		if err := json.Unmarshal(relJSON, &node.Relationships); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal relationships: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// serializeEmbedding converts []float32 to a string like "[0.1,0.2,0.3]"
// suitable for pgvector's text input format.
func serializeEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
