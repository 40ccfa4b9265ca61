package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorruptStore indicates the persisted index exists but failed
// structural validation. The caller must rebuild from source rather
// than trust partial data.
var ErrCorruptStore = errors.New("corrupt knowledge store")

// Store persists the parallel (chunks, embeddings) arrays as a single
// JSON file. There is no append or update operation: a changed corpus
// is handled by rebuilding and overwriting the whole store.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

type storeFile struct {
	Chunks     []string       `json:"chunks"`
	Embeddings [][]float32    `json:"embeddings"`
	Metadata   *storeMetadata `json:"metadata,omitempty"`
}

type storeMetadata struct {
	TotalChunks        int `json:"total_chunks"`
	EmbeddingDimension int `json:"embedding_dimension"`
}

// Save writes the index atomically: the file is written next to the
// target and renamed into place, so a crash mid-write never corrupts a
// previously valid store.
func (s *Store) Save(chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	dimension := 0
	if len(embeddings) > 0 {
		dimension = len(embeddings[0])
	}
	data, err := json.MarshalIndent(storeFile{
		Chunks:     chunks,
		Embeddings: embeddings,
		Metadata: &storeMetadata{
			TotalChunks:        len(chunks),
			EmbeddingDimension: dimension,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// Load reads the persisted index. A missing file is the expected
// first-run state and returns empty slices with no error. An existing
// file that cannot be parsed, or that violates the parallel-array
// invariant, returns ErrCorruptStore.
func (s *Store) Load() ([]string, [][]float32, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read store %s: %w", s.path, err)
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}
	if err := validate(&file); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}
	return file.Chunks, file.Embeddings, nil
}

func validate(file *storeFile) error {
	if len(file.Chunks) != len(file.Embeddings) {
		return fmt.Errorf("%d chunks but %d embeddings", len(file.Chunks), len(file.Embeddings))
	}
	dimension := 0
	if len(file.Embeddings) > 0 {
		dimension = len(file.Embeddings[0])
	}
	for i, vec := range file.Embeddings {
		if len(vec) != dimension {
			return fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(vec), dimension)
		}
	}
	if meta := file.Metadata; meta != nil {
		if meta.TotalChunks != len(file.Chunks) {
			return fmt.Errorf("metadata claims %d chunks, file has %d", meta.TotalChunks, len(file.Chunks))
		}
		if meta.EmbeddingDimension != dimension {
			return fmt.Errorf("metadata claims dimension %d, file has %d", meta.EmbeddingDimension, dimension)
		}
	}
	return nil
}
