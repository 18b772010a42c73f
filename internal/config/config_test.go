package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  collection: "test_kb"
embedding:
  dimensions: 8
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.Collection != "test_kb" {
		t.Errorf("collection = %q", cfg.Storage.Collection)
	}
	if cfg.Embedding.Dimensions != 8 {
		t.Errorf("dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  data_dir: "./data/vectors"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "data/vectors")
	if cfg.Storage.DataDir != want {
		t.Errorf("data_dir = %q, want %q", cfg.Storage.DataDir, want)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	if cfg.Retrieval.IdentityThreshold != 0.5 {
		t.Errorf("identity_threshold = %f", cfg.Retrieval.IdentityThreshold)
	}
	if cfg.Retrieval.HighThreshold != 0.7 {
		t.Errorf("high_threshold = %f", cfg.Retrieval.HighThreshold)
	}
	if cfg.Answer.MaxLength != 800 || cfg.Answer.MinTruncate != 300 {
		t.Errorf("answer defaults = %+v", cfg.Answer)
	}
	if len(cfg.Retrieval.IdentityKeywords) == 0 || len(cfg.Retrieval.InstitutionalKeywords) == 0 {
		t.Error("keyword tables should have defaults")
	}
	if cfg.Embedding.Dimensions != 1024 {
		t.Errorf("dimensions default = %d", cfg.Embedding.Dimensions)
	}
}

func TestApplyDefaults_keywordTablesOverride(t *testing.T) {
	cfg := Config{}
	cfg.Retrieval.IdentityKeywords = []string{"custom"}
	ApplyDefaults(&cfg)
	if len(cfg.Retrieval.IdentityKeywords) != 1 || cfg.Retrieval.IdentityKeywords[0] != "custom" {
		t.Error("explicit keyword table should not be replaced by defaults")
	}
}
