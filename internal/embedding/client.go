// Package embedding turns text into fixed-length vectors via the
// LM Studio OpenAI-compatible embeddings endpoint.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrModelUnavailable indicates the embedding backend could not serve
// the request. There is no degraded embedding mode: callers must fail
// the operation rather than return empty results that masquerade as
// "no relevant chunk".
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Client wraps the OpenAI-compatible API exposed by a local LM Studio
// instance for embedding generation.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates an embedding client against the given base URL
// (for example "http://localhost:1234/v1"). LM Studio ignores the API
// key but the SDK requires one.
func NewClient(baseURL, model string) *Client {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey("lm-studio"),
		// The retrieval core never retries; a failed embed is a hard
		// failure for whatever depended on it.
		option.WithMaxRetries(0),
	)
	return &Client{client: &client, model: model}
}

// Encode embeds a batch of texts in a single model invocation and
// returns vectors in input order.
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrModelUnavailable, len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = toFloat32(data.Embedding)
	}
	return embeddings, nil
}

// toFloat32 narrows the API's float64 vectors for in-memory and
// on-disk storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
