package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Source    SourceConfig    `toml:"source"`
	Database  DatabaseConfig  `toml:"database"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Observer  ObserverConfig  `toml:"observer"`
}

type SourceConfig struct {
	Dir          string `toml:"dir"`
	DocumentType string `toml:"document_type"`
	SourceType   string `toml:"source_type"`
}

type DatabaseConfig struct {
	Path        string `toml:"path"`
	PostgresURL string `toml:"postgres_url"`
}

type ChunkingConfig struct {
	ParentChunkSize    int `toml:"parent_chunk_size"`
	ParentChunkOverlap int `toml:"parent_chunk_overlap"`
	ChildChunkSize     int `toml:"child_chunk_size"`
	ChildChunkOverlap  int `toml:"child_chunk_overlap"`
}

type EmbeddingConfig struct {
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

type ObserverConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Dir:          "claims",
			DocumentType: "insurance_claim_pdf",
			SourceType:   "insurance_claim",
		},
		Database: DatabaseConfig{Path: "claims.db"},
		Chunking: ChunkingConfig{
			ParentChunkSize:    400,
			ParentChunkOverlap: 50,
			ChildChunkSize:     120,
			ChildChunkOverlap:  20,
		},
		Observer: ObserverConfig{ServiceName: "claimindex"},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "claimindex.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("CLAIMINDEX_SOURCE_DIR"); v != "" {
		cfg.Source.Dir = v
	}
	if v := os.Getenv("CLAIMINDEX_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CLAIMINDEX_POSTGRES_URL"); v != "" {
		cfg.Database.PostgresURL = v
	}
	if v := os.Getenv("CLAIMINDEX_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = n
		}
	}
	if os.Getenv("CLAIMINDEX_OBSERVER_ENABLED") == "true" || os.Getenv("CLAIMINDEX_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	return cfg
}
