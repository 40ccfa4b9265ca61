package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/pdf"
)

// DocumentEmbedder is the slice of the embedder the build pipeline
// needs: corpus-role embedding of the full chunk sequence.
type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, chunks []string) ([][]float32, error)
}

// Base is the in-memory knowledge base: the ordered chunk sequence and
// its parallel embedding vectors. A Base is immutable once built and
// therefore safe for unsynchronized concurrent reads by any number of
// front-ends.
type Base struct {
	chunks  []string
	vectors [][]float32
}

// NewBase wraps already-built parallel arrays. It enforces the
// parallelism invariant; a violated invariant would make retrieval
// undefined.
func NewBase(chunks []string, vectors [][]float32) (*Base, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	return &Base{chunks: chunks, vectors: vectors}, nil
}

func (b *Base) Chunks() []string     { return b.chunks }
func (b *Base) Vectors() [][]float32 { return b.vectors }
func (b *Base) Len() int             { return len(b.chunks) }

// Opener performs the one-time build-or-load of a Base. The mutex
// serializes the first-run build so two callers can never both observe
// an absent store and race duplicate writes; after the first call every
// Open returns the same immutable Base.
type Opener struct {
	mu       sync.Mutex
	base     *Base
	store    *Store
	source   pdf.Source
	embedder DocumentEmbedder
	logger   *slog.Logger
}

func NewOpener(store *Store, source pdf.Source, embedder DocumentEmbedder, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		store:    store,
		source:   source,
		embedder: embedder,
		logger:   logger,
	}
}

// Open loads the persisted index, or builds and persists it when no
// store exists yet. A corrupt store is logged and rebuilt from source
// rather than trusted.
func (o *Opener) Open(ctx context.Context) (*Base, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.base != nil {
		return o.base, nil
	}

	chunks, vectors, err := o.store.Load()
	switch {
	case errors.Is(err, ErrCorruptStore):
		o.logger.Warn("Knowledge store failed validation, rebuilding", "path", o.store.Path(), "error", err)
	case err != nil:
		return nil, err
	case len(chunks) > 0:
		o.logger.Info("Loaded knowledge store", "path", o.store.Path(), "chunks", len(chunks))
		base, err := NewBase(chunks, vectors)
		if err != nil {
			return nil, err
		}
		o.base = base
		return base, nil
	}

	base, err := o.build(ctx)
	if err != nil {
		return nil, err
	}
	o.base = base
	return base, nil
}

// Rebuild discards any cached Base and rebuilds the store from source.
func (o *Opener) Rebuild(ctx context.Context) (*Base, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	base, err := o.build(ctx)
	if err != nil {
		return nil, err
	}
	o.base = base
	return base, nil
}

func (o *Opener) build(ctx context.Context) (*Base, error) {
	start := time.Now()
	o.logger.Info("Building knowledge base from source")

	pages, err := o.source.Pages()
	if err != nil {
		return nil, fmt.Errorf("extract source document: %w", err)
	}
	chunks := ChunkPages(pages)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("source document produced no chunks")
	}
	o.logger.Info("Chunked source document", "pages", len(pages), "chunks", len(chunks))

	vectors, err := o.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	if err := o.store.Save(chunks, vectors); err != nil {
		return nil, fmt.Errorf("persist knowledge store: %w", err)
	}
	o.logger.Info("Knowledge base built",
		"chunks", len(chunks),
		"path", o.store.Path(),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return NewBase(chunks, vectors)
}
