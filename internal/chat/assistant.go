// Package chat orchestrates question answering: query embedding,
// chunk retrieval, answer generation, and per-session conversation
// state for the front-ends.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/knowledge"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/llm"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/retriever"
)

// FallbackMessage is shown when no chunk clears the relevance gate.
// This is a normal outcome, not an error: the user is asked to
// rephrase instead of being served a best-but-irrelevant chunk.
const FallbackMessage = "I couldn't find relevant information in the KKH knowledge base to answer your question. Please try rephrasing your question or ask about specific nursing protocols, procedures, or guidelines."

// QueryEmbedder is the query-role slice of the embedder.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, question string) ([]float32, error)
}

// Generator is the generation bridge the assistant forwards retrieved
// context to.
type Generator interface {
	Generate(ctx context.Context, style llm.Style, prompt string) (string, error)
}

// Answer is the outcome of one question. It carries the retrieved
// chunk alongside the answer text so front-ends can show provenance or
// fall back to the raw chunk without re-querying.
type Answer struct {
	Text      string
	Chunk     string
	Score     float32
	Grounded  bool // a chunk cleared the relevance gate
	Generated bool // Text came from the model rather than raw-chunk fallback
}

// Assistant answers questions against an immutable knowledge base.
// Each question is answered independently of chat history.
type Assistant struct {
	base      *knowledge.Base
	embedder  QueryEmbedder
	generator Generator
	threshold float32
	logger    *slog.Logger
}

func NewAssistant(base *knowledge.Base, embedder QueryEmbedder, generator Generator, threshold float32, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		base:      base,
		embedder:  embedder,
		generator: generator,
		threshold: threshold,
		logger:    logger,
	}
}

// Answer handles one question in the standard style.
func (a *Assistant) Answer(ctx context.Context, question string) (Answer, error) {
	return a.AnswerStyled(ctx, question, llm.StyleStandard)
}

// AnswerStyled embeds the question, retrieves the single best chunk,
// and forwards it to the generation bridge. An unavailable embedding
// model is a hard failure; an unreachable generation server degrades
// to the raw chunk text.
func (a *Assistant) AnswerStyled(ctx context.Context, question string, style llm.Style) (Answer, error) {
	vector, err := a.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}

	match, ok := retriever.FindBest(vector, a.base.Chunks(), a.base.Vectors(), a.threshold)
	if !ok {
		a.logger.Info("No relevant chunk", "question_len", len(question))
		return Answer{Text: FallbackMessage}, nil
	}
	a.logger.Debug("Retrieved chunk", "index", match.Index, "score", match.Score)

	prompt := llm.PromptFor(style, match.Text, question)
	text, err := a.generator.Generate(ctx, style, prompt)
	if err != nil {
		a.logger.Warn("Generation failed, returning raw chunk", "error", err)
		return Answer{
			Text:     match.Text,
			Chunk:    match.Text,
			Score:    match.Score,
			Grounded: true,
		}, nil
	}

	return Answer{
		Text:      text,
		Chunk:     match.Text,
		Score:     match.Score,
		Grounded:  true,
		Generated: true,
	}, nil
}
