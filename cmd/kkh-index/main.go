// Package main provides the index-building CLI for the KKH nursing
// knowledge base.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/config"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/embedding"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/knowledge"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/pdf"
)

var (
	configPath string
	force      bool
)

var rootCmd = &cobra.Command{
	Use:   "kkh-index",
	Short: "KKH nursing knowledge base indexing tool",
	Long:  "CLI tool for building the embedded knowledge store from the source PDF",
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build (or rebuild) the embedded knowledge store",
	Long: `Extracts text and tables from the source PDF, chunks them, embeds every
chunk through the local LM Studio embeddings endpoint, and writes the
parallel (chunks, embeddings) index to a JSON store.

An existing valid store is reused unless --force is given; a corrupt
store is always rebuilt. The store is written atomically, so an
interrupted build never clobbers a valid previous index.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "config file path")
	buildCmd.Flags().BoolVarP(&force, "force", "f", false, "rebuild even if a valid store exists")
	rootCmd.AddCommand(buildCmd)
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("Source PDF:  %s\n", cfg.Knowledge.PDFPath)
	fmt.Printf("Store:       %s\n", cfg.Knowledge.StorePath)
	fmt.Printf("Embedder:    %s via %s\n", cfg.Embedding.Model, cfg.Embedding.BaseURL)
	fmt.Println()

	client := embedding.NewClient(cfg.Embedding.BaseURL, cfg.Embedding.Model)
	embedder := embedding.NewEmbedder(client, cfg.Embedding.DocumentPrefix, cfg.Embedding.QueryPrefix, cfg.Embedding.BatchSize)
	store := knowledge.NewStore(cfg.Knowledge.StorePath)
	source := pdf.NewExtractor(cfg.Knowledge.PDFPath)
	opener := knowledge.NewOpener(store, source, embedder, slog.Default())

	var base *knowledge.Base
	if force {
		fmt.Println("Rebuilding knowledge store...")
		base, err = opener.Rebuild(ctx)
	} else {
		fmt.Println("Building knowledge store (reusing a valid existing one)...")
		base, err = opener.Open(ctx)
	}
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Index ready!")
	fmt.Printf("  Chunks:   %d\n", base.Len())
	if base.Len() > 0 {
		fmt.Printf("  Dimension: %d\n", len(base.Vectors()[0]))
	}
	fmt.Printf("  Duration: %s\n", time.Since(start).Round(time.Second))

	return nil
}
