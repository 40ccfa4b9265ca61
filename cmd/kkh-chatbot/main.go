// Package main provides the chatbot entry points: one-shot ask, a
// terminal chat, and the HTTP chat server. All three are thin
// front-ends over the same knowledge core.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/chat"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/config"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/embedding"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/knowledge"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/llm"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/pdf"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/server"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/tui"
)

var (
	configPath  string
	answerStyle string
)

var rootCmd = &cobra.Command{
	Use:   "kkh-chatbot",
	Short: "Retrieval-augmented nursing chatbot over the KKH information file",
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal chat",
	RunE:  runChat,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web chat UI and JSON API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "config file path")
	askCmd.Flags().StringVar(&answerStyle, "style", "standard", "answer style: standard, detailed or quick")
	rootCmd.AddCommand(askCmd, chatCmd, serveCmd)
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired core shared by every front-end.
type app struct {
	cfg       *config.Config
	base      *knowledge.Base
	assistant *chat.Assistant
	bridge    *llm.Client
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	client := embedding.NewClient(cfg.Embedding.BaseURL, cfg.Embedding.Model)
	embedder := embedding.NewEmbedder(client, cfg.Embedding.DocumentPrefix, cfg.Embedding.QueryPrefix, cfg.Embedding.BatchSize)
	store := knowledge.NewStore(cfg.Knowledge.StorePath)
	source := pdf.NewExtractor(cfg.Knowledge.PDFPath)

	base, err := knowledge.NewOpener(store, source, embedder, slog.Default()).Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}

	bridge := llm.NewClient(
		cfg.LLM.BaseURL,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		time.Duration(cfg.LLM.TimeoutSecs)*time.Second,
	)
	assistant := chat.NewAssistant(base, embedder, bridge, cfg.Retrieval.Threshold, slog.Default())

	return &app{cfg: cfg, base: base, assistant: assistant, bridge: bridge}, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := setup(ctx)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	answer, err := a.assistant.AnswerStyled(ctx, question, llm.Style(answerStyle))
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if answer.Grounded {
		fmt.Println()
		fmt.Printf("-- matched knowledge chunk (similarity %.3f):\n%s\n", answer.Score, answer.Chunk)
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := setup(context.Background())
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.New(a.assistant, a.base.Len()), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	a, err := setup(ctx)
	if err != nil {
		return err
	}

	if err := a.bridge.CheckConnection(ctx); err != nil {
		log.Printf("LM Studio not reachable yet, answers will degrade to raw chunks: %v", err)
	}

	srv := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: server.New(a.assistant, a.bridge, a.base.Len(), slog.Default()).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Serving chat on %s (UI at /, API at /api/chat, health at /health)", a.cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
