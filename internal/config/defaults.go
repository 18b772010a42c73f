package config

import "time"

// Default keyword tables for the topical override rules. These reflect the
// vocabulary of an institutional FAQ corpus and are meant to be replaced per
// deployment via the config file.
var (
	defaultIdentityKeywords = []string{
		"tango", "assistant", "chatbot", "who are you", "your name", "yourself",
	}
	defaultInstitutionalKeywords = []string{
		"campus", "enrollment", "tuition", "course", "department",
		"library", "semester", "registration", "scholarship", "exam",
	}
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data/vectors"
	}
	if cfg.Storage.Collection == "" {
		cfg.Storage.Collection = "tango_knowledge"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/db/history.db"
	}
	if cfg.Embedding.Endpoint == "" {
		cfg.Embedding.Endpoint = "http://localhost:11434/api/embed"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "multilingual-e5-large"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1024
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.IdentityThreshold == 0 {
		cfg.Retrieval.IdentityThreshold = 0.5
	}
	if cfg.Retrieval.HighThreshold == 0 {
		cfg.Retrieval.HighThreshold = 0.7
	}
	if cfg.Retrieval.FallbackResults == 0 {
		cfg.Retrieval.FallbackResults = 1
	}
	if cfg.Retrieval.IdentityKeywords == nil {
		cfg.Retrieval.IdentityKeywords = defaultIdentityKeywords
	}
	if cfg.Retrieval.InstitutionalKeywords == nil {
		cfg.Retrieval.InstitutionalKeywords = defaultInstitutionalKeywords
	}
	if cfg.Answer.MaxLength == 0 {
		cfg.Answer.MaxLength = 800
	}
	if cfg.Answer.MinTruncate == 0 {
		cfg.Answer.MinTruncate = 300
	}
	if cfg.Answer.MaxSentences == 0 {
		cfg.Answer.MaxSentences = 3
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf"}
	}
	if cfg.Watch.ChunkSize == 0 {
		cfg.Watch.ChunkSize = 1000
	}
}
