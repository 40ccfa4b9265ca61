package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/embedding"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/knowledge"
	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/llm"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, question string) ([]float32, error) {
	return s.vector, s.err
}

type stubGenerator struct {
	answer string
	err    error

	gotStyle  llm.Style
	gotPrompt string
	calls     int
}

func (s *stubGenerator) Generate(ctx context.Context, style llm.Style, prompt string) (string, error) {
	s.calls++
	s.gotStyle = style
	s.gotPrompt = prompt
	return s.answer, s.err
}

func testBase(t *testing.T) *knowledge.Base {
	t.Helper()
	base, err := knowledge.NewBase(
		[]string{
			"Patients must wash hands before every procedure.",
			"Table from page 3:\nDose | 5mg | 10mg",
		},
		[][]float32{
			{1, 0},
			{0, 1},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return base
}

func TestAssistant_GeneratedAnswer(t *testing.T) {
	gen := &stubGenerator{answer: "Wash hands with soap."}
	a := NewAssistant(testBase(t),
		&stubEmbedder{vector: []float32{0.9, 0.1}},
		gen, 0.1, slog.Default())

	answer, err := a.Answer(context.Background(), "What is proper hand hygiene?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if !answer.Grounded || !answer.Generated {
		t.Errorf("Expected grounded generated answer, got %+v", answer)
	}
	if answer.Text != "Wash hands with soap." {
		t.Errorf("Unexpected answer text: %q", answer.Text)
	}
	if answer.Chunk != "Patients must wash hands before every procedure." {
		t.Errorf("Expected the hygiene chunk, got %q", answer.Chunk)
	}
	if answer.Score < 0.1 {
		t.Errorf("Expected score over threshold, got %f", answer.Score)
	}
	wantPrompt := "Context:\nPatients must wash hands before every procedure.\n\nQuestion: What is proper hand hygiene?"
	if gen.gotPrompt != wantPrompt {
		t.Errorf("Prompt mismatch:\n got %q\nwant %q", gen.gotPrompt, wantPrompt)
	}
}

func TestAssistant_FallbackWhenNotRelevant(t *testing.T) {
	gen := &stubGenerator{answer: "should never be called"}
	// Query orthogonal to both corpus vectors.
	a := NewAssistant(testBase(t),
		&stubEmbedder{vector: []float32{0, 0}},
		gen, 0.1, slog.Default())

	answer, err := a.Answer(context.Background(), "Who won the league?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if answer.Grounded || answer.Generated {
		t.Errorf("Expected ungrounded fallback, got %+v", answer)
	}
	if answer.Text != FallbackMessage {
		t.Errorf("Expected the fallback message, got %q", answer.Text)
	}
	if gen.calls != 0 {
		t.Error("Generator must not be called without a relevant chunk")
	}
}

// TestAssistant_DegradesToRawChunk verifies the bridge-down path:
// retrieval succeeded, so the raw chunk is the answer, with no
// re-query.
func TestAssistant_DegradesToRawChunk(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("%w: connection refused", llm.ErrUnreachable)}
	a := NewAssistant(testBase(t),
		&stubEmbedder{vector: []float32{0.9, 0.1}},
		gen, 0.1, slog.Default())

	answer, err := a.Answer(context.Background(), "What is proper hand hygiene?")
	if err != nil {
		t.Fatalf("Degradation must not surface an error, got %v", err)
	}

	if !answer.Grounded || answer.Generated {
		t.Errorf("Expected grounded non-generated answer, got %+v", answer)
	}
	if answer.Text != answer.Chunk {
		t.Errorf("Degraded answer must be the raw chunk, got %q", answer.Text)
	}
}

// TestAssistant_EmbedFailureIsHard verifies an unavailable embedding
// model fails the operation instead of masquerading as "no relevant
// chunk".
func TestAssistant_EmbedFailureIsHard(t *testing.T) {
	a := NewAssistant(testBase(t),
		&stubEmbedder{err: fmt.Errorf("%w: not loaded", embedding.ErrModelUnavailable)},
		&stubGenerator{}, 0.1, slog.Default())

	_, err := a.Answer(context.Background(), "anything")
	if !errors.Is(err, embedding.ErrModelUnavailable) {
		t.Errorf("Expected ErrModelUnavailable, got %v", err)
	}
}

func TestAssistant_EmptyCorpus(t *testing.T) {
	base, err := knowledge.NewBase(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	a := NewAssistant(base, &stubEmbedder{vector: []float32{1, 0}}, &stubGenerator{}, 0.1, slog.Default())

	answer, err := a.Answer(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Empty corpus must not error, got %v", err)
	}
	if answer.Text != FallbackMessage {
		t.Errorf("Expected fallback for empty corpus, got %q", answer.Text)
	}
}

func TestAssistant_StyleForwarded(t *testing.T) {
	gen := &stubGenerator{answer: "ok"}
	a := NewAssistant(testBase(t),
		&stubEmbedder{vector: []float32{0.9, 0.1}},
		gen, 0.1, slog.Default())

	if _, err := a.AnswerStyled(context.Background(), "hand hygiene?", llm.StyleQuick); err != nil {
		t.Fatal(err)
	}
	if gen.gotStyle != llm.StyleQuick {
		t.Errorf("Expected quick style forwarded, got %q", gen.gotStyle)
	}
}
