package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Missing config should not error, got %v", err)
	}

	if cfg.LLM.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("LLM base URL default: got %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model != "OpenHermes-2.5-Mistral-7B" {
		t.Errorf("LLM model default: got %q", cfg.LLM.Model)
	}
	if cfg.LLM.TimeoutSecs != 30 || cfg.LLM.MaxTokens != 500 {
		t.Errorf("LLM limits default: got %+v", cfg.LLM)
	}
	if cfg.Retrieval.Threshold != 0.1 {
		t.Errorf("Threshold default: got %f", cfg.Retrieval.Threshold)
	}
	if cfg.Retrieval.TopK != 1 {
		t.Errorf("TopK default: got %d", cfg.Retrieval.TopK)
	}
	if cfg.Embedding.DocumentPrefix != "Represent this document for retrieval: " {
		t.Errorf("Document prefix default: got %q", cfg.Embedding.DocumentPrefix)
	}
	if cfg.Embedding.QueryPrefix != "Represent this query for retrieval: " {
		t.Errorf("Query prefix default: got %q", cfg.Embedding.QueryPrefix)
	}
	if cfg.Embedding.DocumentPrefix == cfg.Embedding.QueryPrefix {
		t.Error("The two role prefixes must differ")
	}
	if cfg.Knowledge.StorePath != "embedded_knowledge.json" {
		t.Errorf("Store path default: got %q", cfg.Knowledge.StorePath)
	}
}

func TestLoad_FileOverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := `
llm:
  base_url: http://modelbox:9999/v1
retrieval:
  threshold: 0.25
knowledge:
  pdf_path: docs/handbook.pdf
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.BaseURL != "http://modelbox:9999/v1" {
		t.Errorf("Override ignored: %q", cfg.LLM.BaseURL)
	}
	if cfg.Retrieval.Threshold != 0.25 {
		t.Errorf("Threshold override ignored: %f", cfg.Retrieval.Threshold)
	}
	if cfg.Knowledge.PDFPath != "docs/handbook.pdf" {
		t.Errorf("PDF path override ignored: %q", cfg.Knowledge.PDFPath)
	}
	// Unset fields still get defaults.
	if cfg.LLM.Model != "OpenHermes-2.5-Mistral-7B" {
		t.Errorf("Expected model default to backfill, got %q", cfg.LLM.Model)
	}
	// The embedder follows the LLM endpoint unless set explicitly.
	if cfg.Embedding.BaseURL != "http://modelbox:9999/v1" {
		t.Errorf("Embedding base URL should follow LLM's, got %q", cfg.Embedding.BaseURL)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for invalid yaml")
	}
}
