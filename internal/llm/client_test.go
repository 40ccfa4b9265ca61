package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Wash hands before procedures.", "What is hand hygiene?")
	want := "Context:\nWash hands before procedures.\n\nQuestion: What is hand hygiene?"
	assert.Equal(t, want, got)
}

func TestPromptFor_Styles(t *testing.T) {
	standard := PromptFor(StyleStandard, "chunk", "q")
	detailed := PromptFor(StyleDetailed, "chunk", "q")
	quick := PromptFor(StyleQuick, "chunk", "q")

	assert.True(t, strings.HasPrefix(detailed, standard), "detailed extends the standard prompt")
	assert.Contains(t, detailed, "Safety implications")
	assert.True(t, strings.HasPrefix(quick, standard))
	assert.Contains(t, quick, "brief, actionable answer")

	// Unknown styles fall back to standard.
	assert.Equal(t, standard, PromptFor(Style("bogus"), "chunk", "q"))
}

type recordedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// newModelServer fakes the LM Studio OpenAI-compatible endpoint and
// records the last chat-completion request.
func newModelServer(t *testing.T, answer string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	last := &recordedRequest{}
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(last))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": answer},
					"finish_reason": "stop",
				},
			},
		})
	})
	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"OpenHermes-2.5-Mistral-7B","object":"model"}]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, last
}

func TestClient_Generate(t *testing.T) {
	server, last := newModelServer(t, "Wash hands with soap for twenty seconds.")
	client := NewClient(server.URL, "OpenHermes-2.5-Mistral-7B", 0.7, 5*time.Second)

	answer, err := client.Generate(context.Background(), StyleStandard, BuildPrompt("chunk text", "question?"))
	require.NoError(t, err)
	assert.Equal(t, "Wash hands with soap for twenty seconds.", answer)

	assert.Equal(t, "OpenHermes-2.5-Mistral-7B", last.Model)
	assert.InDelta(t, 0.7, last.Temperature, 0.001)
	assert.Equal(t, 500, last.MaxTokens)
	require.Len(t, last.Messages, 2)
	assert.Equal(t, "system", last.Messages[0].Role)
	assert.Equal(t, systemMessages[StyleStandard], last.Messages[0].Content)
	assert.Equal(t, "user", last.Messages[1].Role)
	assert.Contains(t, last.Messages[1].Content, "Context:\nchunk text")
}

func TestClient_Generate_StyleBudgets(t *testing.T) {
	server, last := newModelServer(t, "ok")
	client := NewClient(server.URL, "m", 0.7, 5*time.Second)
	ctx := context.Background()

	_, err := client.Generate(ctx, StyleDetailed, "p")
	require.NoError(t, err)
	assert.Equal(t, 800, last.MaxTokens)
	assert.Equal(t, systemMessages[StyleDetailed], last.Messages[0].Content)

	_, err = client.Generate(ctx, StyleQuick, "p")
	require.NoError(t, err)
	assert.Equal(t, 200, last.MaxTokens)
}

func TestClient_Generate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close() // connection refused from here on

	client := NewClient(url, "m", 0.7, 300*time.Millisecond)
	_, err := client.Generate(context.Background(), StyleStandard, "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestClient_CheckConnection(t *testing.T) {
	server, _ := newModelServer(t, "unused")
	client := NewClient(server.URL, "m", 0.7, time.Second)
	assert.NoError(t, client.CheckConnection(context.Background()))

	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()
	bad := NewClient(url, "m", 0.7, time.Second)
	assert.ErrorIs(t, bad.CheckConnection(context.Background()), ErrUnreachable)
}
