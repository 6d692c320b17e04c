// Command claimindex walks a directory of claim documents and builds the
// searchable node index: extract -> segment -> chunk -> store.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	ragagent "github.com/guychikaAL/RagAgent"
	"github.com/guychikaAL/RagAgent/chunk"
	"github.com/guychikaAL/RagAgent/ingest"
	"github.com/guychikaAL/RagAgent/internal/config"
	"github.com/guychikaAL/RagAgent/observer"
	"github.com/guychikaAL/RagAgent/segment"
	"github.com/guychikaAL/RagAgent/store/postgres"
	"github.com/guychikaAL/RagAgent/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.Load(os.Getenv("CLAIMINDEX_CONFIG"))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Observability is optional; without it spans and metrics are skipped
	// entirely.
	var tracer ragagent.Tracer
	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		instruments, shutdown, err := observer.Init(ctx, cfg.Observer.ServiceName)
		if err != nil {
			return fmt.Errorf("observer init: %w", err)
		}
		inst = instruments
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
		tracer = observer.NewTracer()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("store init: %w", err)
	}

	ingestor := ingest.NewIngestor(
		ingest.WithDocumentType(cfg.Source.DocumentType),
		ingest.WithSourceType(cfg.Source.SourceType),
		ingest.WithLogger(logger),
	)
	segmenter := segment.NewSegmenter(segment.WithLogger(logger))
	chunker, err := chunk.New(
		chunk.WithParentChunkSize(cfg.Chunking.ParentChunkSize),
		chunk.WithParentChunkOverlap(cfg.Chunking.ParentChunkOverlap),
		chunk.WithChildChunkSize(cfg.Chunking.ChildChunkSize),
		chunk.WithChildChunkOverlap(cfg.Chunking.ChildChunkOverlap),
		chunk.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("chunker: %w", err)
	}

	var indexed, failed int
	err = filepath.WalkDir(cfg.Source.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedFile(path) {
			return nil
		}
		if err := indexFile(ctx, path, ingestor, segmenter, chunker, store, tracer, inst, logger); err != nil {
			failed++
			logger.Error("index failed", "file", path, "error", err)
			return nil
		}
		indexed++
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", cfg.Source.Dir, err)
	}

	logger.Info("index build complete", "indexed", indexed, "failed", failed)
	if indexed == 0 {
		return fmt.Errorf("no documents indexed under %s", cfg.Source.Dir)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (ragagent.NodeStore, error) {
	if cfg.Database.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}
		var opts []postgres.Option
		if cfg.Embedding.Dimensions > 0 {
			opts = append(opts, postgres.WithEmbeddingDimension(cfg.Embedding.Dimensions))
		}
		return postgres.New(pool, opts...), nil
	}
	return sqlite.New(cfg.Database.Path), nil
}

func supportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md", ".markdown", ".html", ".htm":
		return true
	}
	return false
}

func indexFile(ctx context.Context, path string, ingestor *ingest.Ingestor, segmenter *segment.Segmenter, chunker *chunk.Pipeline, store ragagent.NodeStore, tracer ragagent.Tracer, inst *observer.Instruments, logger *slog.Logger) error {
	var span ragagent.Span
	if tracer != nil {
		ctx, span = tracer.Start(ctx, "index.document",
			ragagent.StringAttr("pipeline.source_file", filepath.Base(path)))
		defer span.End()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	ingestStart := time.Now()
	doc, err := ingestor.IngestFile(content, filepath.Base(path))
	if err != nil {
		if span != nil {
			span.Error(err)
		}
		if inst != nil {
			inst.IngestErrors.Add(ctx, 1)
		}
		return err
	}
	if inst != nil {
		inst.DocumentsIngested.Add(ctx, 1)
		inst.IngestDuration.Record(ctx, float64(time.Since(ingestStart).Milliseconds()))
	}

	segmentStart := time.Now()
	records := segmenter.Split(doc)
	if inst != nil {
		inst.RecordsSegmented.Add(ctx, int64(len(records)))
		inst.SegmentDuration.Record(ctx, float64(time.Since(segmentStart).Milliseconds()))
	}

	chunkStart := time.Now()
	var nodes []ragagent.Node
	for _, rec := range records {
		nodes = append(nodes, chunker.BuildNodes(rec)...)
	}
	if inst != nil {
		inst.NodesBuilt.Add(ctx, int64(len(nodes)))
		inst.ChunkDuration.Record(ctx, float64(time.Since(chunkStart).Milliseconds()))
	}
	if span != nil {
		span.SetAttr(
			ragagent.StringAttr("pipeline.document_id", doc.ID),
			ragagent.IntAttr("pipeline.record_count", len(records)),
			ragagent.IntAttr("pipeline.node_count", len(nodes)),
		)
	}

	storeStart := time.Now()
	if err := store.StoreDocument(ctx, doc, records, nodes); err != nil {
		if span != nil {
			span.Error(err)
		}
		return fmt.Errorf("store: %w", err)
	}
	if inst != nil {
		inst.NodesStored.Add(ctx, int64(len(nodes)))
		inst.StoreDuration.Record(ctx, float64(time.Since(storeStart).Milliseconds()))
	}

	logger.Info("document indexed",
		"file", filepath.Base(path),
		"document_id", doc.ID,
		"records", len(records),
		"nodes", len(nodes))
	return nil
}
