package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Chunking.ParentChunkSize != 400 {
		t.Errorf("expected parent size 400, got %d", cfg.Chunking.ParentChunkSize)
	}
	if cfg.Chunking.ChildChunkSize != 120 {
		t.Errorf("expected child size 120, got %d", cfg.Chunking.ChildChunkSize)
	}
	if cfg.Source.DocumentType != "insurance_claim_pdf" {
		t.Errorf("expected insurance_claim_pdf, got %s", cfg.Source.DocumentType)
	}
	if cfg.Database.Path != "claims.db" {
		t.Errorf("expected claims.db, got %s", cfg.Database.Path)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")
	os.WriteFile(path, []byte(`
[source]
dir = "/data/claims"

[chunking]
parent_chunk_size = 512
`), 0644)

	cfg := Load(path)
	if cfg.Source.Dir != "/data/claims" {
		t.Errorf("expected /data/claims, got %s", cfg.Source.Dir)
	}
	if cfg.Chunking.ParentChunkSize != 512 {
		t.Errorf("expected 512, got %d", cfg.Chunking.ParentChunkSize)
	}
	// Defaults preserved
	if cfg.Chunking.ChildChunkSize != 120 {
		t.Errorf("default should be preserved, got %d", cfg.Chunking.ChildChunkSize)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CLAIMINDEX_SOURCE_DIR", "/env/claims")
	t.Setenv("CLAIMINDEX_DB_PATH", "env.db")
	t.Setenv("CLAIMINDEX_OBSERVER_ENABLED", "true")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Source.Dir != "/env/claims" {
		t.Errorf("expected /env/claims, got %s", cfg.Source.Dir)
	}
	if cfg.Database.Path != "env.db" {
		t.Errorf("expected env.db, got %s", cfg.Database.Path)
	}
	if !cfg.Observer.Enabled {
		t.Error("expected observer enabled from env")
	}
}
