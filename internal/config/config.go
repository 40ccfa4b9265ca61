package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig holds connection settings for the LM Studio chat-completion
// endpoint used for answer generation.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// EmbeddingConfig configures the embedding model and the instruction
// prefixes applied to document and query inputs. The two prefixes are
// deliberately distinct: the e5-instruct model family separates the
// document role from the query role to improve retrieval geometry.
type EmbeddingConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	BatchSize      int    `yaml:"batch_size"`
	DocumentPrefix string `yaml:"document_prefix"`
	QueryPrefix    string `yaml:"query_prefix"`
}

// RetrievalConfig controls the relevance gate and result count.
// TopK is carried for completeness; current callers are top-1 only.
type RetrievalConfig struct {
	Threshold float32 `yaml:"threshold"`
	TopK      int     `yaml:"top_k"`
}

// KnowledgeConfig points at the source PDF and the persisted index file.
type KnowledgeConfig struct {
	PDFPath   string `yaml:"pdf_path"`
	StorePath string `yaml:"store_path"`
}

// ServerConfig configures the HTTP chat front-end.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root application configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Server    ServerConfig    `yaml:"server"`
}

// Load reads a config from the given path. A missing file is not an
// error: defaults are returned so the chatbot runs out of the box
// against a local LM Studio instance.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration matching a stock local
// LM Studio setup.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:1234/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "OpenHermes-2.5-Mistral-7B"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 30
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-multilingual-e5-large-instruct"
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 64
	}
	if cfg.Embedding.DocumentPrefix == "" {
		cfg.Embedding.DocumentPrefix = "Represent this document for retrieval: "
	}
	if cfg.Embedding.QueryPrefix == "" {
		cfg.Embedding.QueryPrefix = "Represent this query for retrieval: "
	}
	if cfg.Retrieval.Threshold == 0 {
		cfg.Retrieval.Threshold = 0.1
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 1
	}
	if cfg.Knowledge.PDFPath == "" {
		cfg.Knowledge.PDFPath = "data/KKH Information file.pdf"
	}
	if cfg.Knowledge.StorePath == "" {
		cfg.Knowledge.StorePath = "embedded_knowledge.json"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}
