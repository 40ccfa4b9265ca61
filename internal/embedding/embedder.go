package embedding

import (
	"context"
	"fmt"
)

// DefaultBatchSize bounds how many chunks go into one embeddings
// request; local servers reject very large request bodies.
const DefaultBatchSize = 64

// Encoder is the raw batch-embedding backend. *Client implements it;
// tests substitute stubs.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder applies the role-specific instruction prefixes before
// encoding. The instruct model family produces different vectors for
// the document and query roles; indexing and querying must each go
// through their own path.
type Embedder struct {
	encoder        Encoder
	documentPrefix string
	queryPrefix    string
	batchSize      int
}

func NewEmbedder(encoder Encoder, documentPrefix, queryPrefix string, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{
		encoder:        encoder,
		documentPrefix: documentPrefix,
		queryPrefix:    queryPrefix,
		batchSize:      batchSize,
	}
}

// EmbedDocuments embeds corpus chunks with the document instruction
// prefix. Vectors come back 1:1 in input order.
func (e *Embedder) EmbedDocuments(ctx context.Context, chunks []string) ([][]float32, error) {
	prefixed := make([]string, len(chunks))
	for i, chunk := range chunks {
		prefixed[i] = e.documentPrefix + chunk
	}

	var all [][]float32
	for i := 0; i < len(prefixed); i += e.batchSize {
		end := min(i+e.batchSize, len(prefixed))
		vectors, err := e.encoder.Encode(ctx, prefixed[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}
	return all, nil
}

// EmbedQuery embeds a user question with the query instruction prefix.
func (e *Embedder) EmbedQuery(ctx context.Context, question string) ([]float32, error) {
	vectors, err := e.encoder.Encode(ctx, []string{e.queryPrefix + question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one query vector, got %d", len(vectors))
	}
	return vectors[0], nil
}
