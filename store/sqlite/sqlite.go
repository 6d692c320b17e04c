// Package sqlite implements ragagent.NodeStore using pure-Go SQLite with
// in-process brute-force vector search. Zero CGO required.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	ragagent "github.com/guychikaAL/RagAgent"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store. When set, the store
// emits debug logs for every operation including timing and row counts.
// If not set, no logs are emitted.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store implements ragagent.NodeStore backed by a local SQLite file.
// Embeddings are stored as JSON text and vector search is done in-process
// using brute-force cosine similarity; record_id filtering happens in SQL
// so the scan only ever touches one claim's nodes.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ragagent.NodeStore = (*Store)(nil)

// nopLogger discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Store using a local SQLite file at dbPath. It opens a
// single shared connection pool with SetMaxOpenConns(1) so that all
// goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors from concurrent writers.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// Init creates all required tables.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	tables := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			metadata TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			record_number TEXT NOT NULL,
			ordinal_index INTEGER NOT NULL,
			title TEXT,
			subject_name TEXT,
			text TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			record_id TEXT NOT NULL,
			chunk_level TEXT NOT NULL,
			position_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			metadata TEXT NOT NULL,
			relationships TEXT NOT NULL,
			embedding TEXT
		)`,
	}
	for _, ddl := range tables {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	// Indexes on the filter columns every retrieval path uses.
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_nodes_record ON nodes(record_id, chunk_level)`)
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_nodes_document ON nodes(document_id)`)
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_records_document ON records(document_id)`)

	s.logger.Info("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// StoreDocument inserts a document, its records, and all their nodes in a
// single transaction. Any previous node set for the document is replaced,
// so re-indexing the same document is idempotent.
func (s *Store) StoreDocument(ctx context.Context, doc ragagent.Document, records []ragagent.Record, nodes []ragagent.Node) error {
	start := time.Now()
	s.logger.Debug("sqlite: store document", "id", doc.ID, "records", len(records), "nodes", len(nodes))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal document metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, text, metadata) VALUES (?, ?, ?)`,
		doc.ID, doc.Text, string(metaJSON),
	); err != nil {
		return fmt.Errorf("store document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (id, document_id, record_number, ordinal_index, title, subject_name, text)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.RecordID, rec.DocumentID, rec.RecordNumber, rec.OrdinalIndex, rec.Title, rec.SubjectName, rec.Text,
		); err != nil {
			return fmt.Errorf("store record %s: %w", rec.RecordID, err)
		}
	}

	for _, node := range nodes {
		mdJSON, err := json.Marshal(node.Metadata)
		if err != nil {
			return fmt.Errorf("marshal node metadata: %w", err)
		}
		relJSON, err := json.Marshal(node.Relationships)
		if err != nil {
			return fmt.Errorf("marshal node relationships: %w", err)
		}
		var embJSON *string
		if len(node.Embedding) > 0 {
			v := serializeEmbedding(node.Embedding)
			embJSON = &v
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (id, document_id, record_id, chunk_level, position_index, text, metadata, relationships, embedding)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			node.NodeID, node.Metadata.DocumentID, node.Metadata.RecordID, string(node.Level),
			node.Metadata.PositionIndex, node.Text, string(mdJSON), string(relJSON), embJSON,
		); err != nil {
			return fmt.Errorf("store node %s: %w", node.NodeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("sqlite: store document ok", "id", doc.ID, "duration", time.Since(start))
	return nil
}

// Node fetches one node by ID.
func (s *Store) Node(ctx context.Context, nodeID string) (ragagent.Node, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chunk_level, text, metadata, relationships, embedding FROM nodes WHERE id = ?`,
		nodeID,
	)
	node, err := scanNode(row)
	if err == sql.ErrNoRows {
		return ragagent.Node{}, fmt.Errorf("node %s: not found", nodeID)
	}
	if err != nil {
		return ragagent.Node{}, fmt.Errorf("get node %s: %w", nodeID, err)
	}
	return node, nil
}

// NodesByRecord returns all nodes of one record, optionally restricted to a
// level, ordered by level then position.
func (s *Store) NodesByRecord(ctx context.Context, recordID string, level ragagent.ChunkLevel) ([]ragagent.Node, error) {
	query := `SELECT id, chunk_level, text, metadata, relationships, embedding
		 FROM nodes WHERE record_id = ?`
	args := []any{recordID}
	if level != "" {
		query += ` AND chunk_level = ?`
		args = append(args, string(level))
	}
	query += ` ORDER BY chunk_level, position_index`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("nodes by record: %w", err)
	}
	defer rows.Close()

	var nodes []ragagent.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

// Records returns all records of one document in ordinal order.
func (s *Store) Records(ctx context.Context, documentID string) ([]ragagent.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, record_number, ordinal_index, title, subject_name, text
		 FROM records WHERE document_id = ? ORDER BY ordinal_index`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}
	defer rows.Close()

	var records []ragagent.Record
	for rows.Next() {
		var rec ragagent.Record
		var title, subject sql.NullString
		if err := rows.Scan(&rec.RecordID, &rec.DocumentID, &rec.RecordNumber,
			&rec.OrdinalIndex, &title, &subject, &rec.Text); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Title = title.String
		rec.SubjectName = subject.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// SearchNodes scans embedded nodes matching the filter and returns the topK
// most cosine-similar to the query embedding.
func (s *Store) SearchNodes(ctx context.Context, embedding []float32, topK int, filter ragagent.NodeFilter) ([]ragagent.ScoredNode, error) {
	start := time.Now()

	query := `SELECT id, chunk_level, text, metadata, relationships, embedding
		 FROM nodes WHERE embedding IS NOT NULL`
	var args []any
	if filter.RecordID != "" {
		query += ` AND record_id = ?`
		args = append(args, filter.RecordID)
	}
	if filter.Level != "" {
		query += ` AND chunk_level = ?`
		args = append(args, string(filter.Level))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search nodes: %w", err)
	}
	defer rows.Close()

	var results []ragagent.ScoredNode
	scanned := 0
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		scanned++
		if len(node.Embedding) == 0 {
			continue
		}
		results = append(results, ragagent.ScoredNode{
			Node:  node,
			Score: cosineSimilarity(embedding, node.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}

	s.logger.Debug("sqlite: search nodes ok",
		"scanned", scanned, "returned", len(results),
		"record_id", filter.RecordID, "duration", time.Since(start))
	return results, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (ragagent.Node, error) {
	var node ragagent.Node
	var level, mdJSON, relJSON string
	var embJSON sql.NullString
	if err := row.Scan(&node.NodeID, &level, &node.Text, &mdJSON, &relJSON, &embJSON); err != nil {
		return ragagent.Node{}, err
	}
	node.Level = ragagent.ChunkLevel(level)
	if err := json.Unmarshal([]byte(mdJSON), &node.Metadata); err != nil {
		return ragagent.Node{}, fmt.Errorf("unmarshal metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(relJSON), &node.Relationships); err != nil {
		return ragagent.Node{}, fmt.Errorf("unmarshal relationships: %w", err)
	}
	if embJSON.Valid {
		emb, err := deserializeEmbedding(embJSON.String)
		if err == nil {
			node.Embedding = emb
		}
	}
	return node, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}

// serializeEmbedding converts []float32 to a JSON array string.
func serializeEmbedding(embedding []float32) string {
	data, _ := json.Marshal(embedding)
	return string(data)
}

// deserializeEmbedding parses a JSON array string back to []float32.
func deserializeEmbedding(s string) ([]float32, error) {
	var v []float32
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
