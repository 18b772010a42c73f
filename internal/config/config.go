// Package config provides configuration loading and structs for the Tango server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Answer    AnswerConfig    `yaml:"answer"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the vector collection location and the history database path.
type StorageConfig struct {
	DataDir      string `yaml:"data_dir"`
	Collection   string `yaml:"collection"`
	DatabasePath string `yaml:"database_path"`
}

// EmbeddingConfig holds embedding provider settings. The provider is an
// external HTTP service; Dimensions is fixed for the life of a collection.
type EmbeddingConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheSize  int           `yaml:"cache_size"`
}

// RetrievalConfig holds retrieval and relevance-filter settings.
// The keyword tables drive the topical override rules and are deployment
// vocabulary, not code.
type RetrievalConfig struct {
	TopK                  int      `yaml:"top_k"`
	IdentityThreshold     float64  `yaml:"identity_threshold"`
	HighThreshold         float64  `yaml:"high_threshold"`
	FallbackResults       int      `yaml:"fallback_results"`
	IdentityKeywords      []string `yaml:"identity_keywords"`
	InstitutionalKeywords []string `yaml:"institutional_keywords"`
	ExtraStopwords        []string `yaml:"extra_stopwords"`
}

// AnswerConfig holds answer composition settings.
// Seed fixes the intro-phrase choice; 0 means seed from the clock.
type AnswerConfig struct {
	MaxLength    int   `yaml:"max_length"`
	MinTruncate  int   `yaml:"min_truncate"`
	MaxSentences int   `yaml:"max_sentences"`
	Seed         int64 `yaml:"seed"`
}

// WatchConfig holds ingestion directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	ChunkSize   int      `yaml:"chunk_size"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DataDir = expandPath(cfg.Storage.DataDir, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
