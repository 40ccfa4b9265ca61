// Package retriever finds the best-matching knowledge chunk for a
// query vector by linear-scan cosine similarity.
//
// A linear scan is the right tool at this corpus size (one document,
// hundreds of chunks). Anyone pointing this at a large corpus inherits
// the scan as the scaling limit and needs a real index.
package retriever

import "math"

// DefaultThreshold is the minimum cosine similarity for a chunk to
// count as relevant. Below it the caller-visible contract is "no
// relevant information found", never a best-but-irrelevant chunk.
const DefaultThreshold = 0.1

// Match is a retrieval hit: the chunk text, its position in stored
// order, and its similarity to the query.
type Match struct {
	Index int
	Text  string
	Score float32
}

// CosineSimilarity returns the cosine of the angle between two vectors
// on a [-1, 1] scale, or 0 when lengths differ or either vector is all
// zeros.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// FindBest scans every stored vector and returns the single most
// similar chunk, or ok=false when the corpus is empty or the maximum
// similarity falls strictly below threshold. Ties resolve to the first
// maximal index in stored order, so identical inputs always return the
// identical chunk.
func FindBest(query []float32, chunks []string, vectors [][]float32, threshold float32) (Match, bool) {
	bestIndex := -1
	var bestScore float32
	for i, vec := range vectors {
		score := CosineSimilarity(query, vec)
		if bestIndex == -1 || score > bestScore {
			bestIndex = i
			bestScore = score
		}
	}
	if bestIndex == -1 || bestScore < threshold {
		return Match{}, false
	}
	return Match{Index: bestIndex, Text: chunks[bestIndex], Score: bestScore}, true
}
