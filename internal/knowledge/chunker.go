// Package knowledge builds, persists and serves the chunked and
// embedded knowledge base extracted from the source document.
package knowledge

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Elainezzz001/kkh-nursing-chatbot/internal/pdf"
)

// minChunkRunes is the length floor for sentence chunks. Fragments at
// or below this length (navigation artifacts, page numbers, broken
// words) carry too little signal to embed.
const minChunkRunes = 20

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// sentenceEndRe splits on runs of sentence-terminal punctuation.
	// This is deliberately punctuation-only: decimal numbers and
	// abbreviations do produce false splits, and that approximation is
	// accepted rather than papered over with sentence-boundary
	// detection the corpus does not need.
	sentenceEndRe = regexp.MustCompile(`[.!?]+`)
)

// ChunkPages converts raw page extractions into the ordered chunk
// sequence of the knowledge base. Per page, prose sentences come
// first, then one chunk per table; pages keep document order. There is
// no deduplication and no upper length cap.
func ChunkPages(pages []pdf.Page) []string {
	var chunks []string
	for _, page := range pages {
		chunks = append(chunks, chunkText(page.Text)...)
		for _, table := range page.Tables {
			if rendered := renderTable(table); rendered != "" {
				// Page numbers are 1-indexed in chunk text.
				chunks = append(chunks, fmt.Sprintf("Table from page %d:\n%s", page.Number+1, rendered))
			}
		}
	}
	return chunks
}

func chunkText(text string) []string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}
	var chunks []string
	for _, fragment := range sentenceEndRe.Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if utf8.RuneCountInString(fragment) > minChunkRunes {
			chunks = append(chunks, fragment)
		}
	}
	return chunks
}

// renderTable serializes table rows with " | " between cells and
// newlines between rows. Empty rows are skipped; empty cells render as
// empty strings so column positions stay visible.
func renderTable(table [][]string) string {
	var lines []string
	for _, row := range table {
		if len(row) == 0 {
			continue
		}
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
