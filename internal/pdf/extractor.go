// Package pdf reads per-page text and table rows out of the knowledge
// base source document.
package pdf

import (
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction indicates the source document could not be opened or
// parsed. Callers must treat this as distinct from a legitimately empty
// corpus.
var ErrExtraction = errors.New("pdf extraction failed")

// Page is the raw extraction output for a single document page.
// Number is zero-based; presentation layers that mention pages add one.
type Page struct {
	Number int
	Text   string
	Tables [][][]string
}

// Source yields the per-page content of a source document. The
// knowledge pipeline consumes this interface rather than opening files
// itself.
type Source interface {
	Pages() ([]Page, error)
}

// Extractor is the PDF-backed Source implementation.
type Extractor struct {
	path string
}

func NewExtractor(path string) *Extractor {
	return &Extractor{path: path}
}

// Pages extracts text and tables for every page of the document in
// page order. Pages that yield neither text nor tables are still
// emitted so page numbering stays aligned with the source.
func (e *Extractor) Pages() ([]Page, error) {
	f, r, err := pdf.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrExtraction, e.path, err)
	}
	defer f.Close()

	total := r.NumPage()
	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		page := Page{Number: i - 1}
		if text, err := p.GetPlainText(nil); err == nil {
			page.Text = text
		}
		if rows, err := p.GetTextByRow(); err == nil {
			page.Tables = detectTables(rows)
		}
		pages = append(pages, page)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s contains no readable pages", ErrExtraction, e.path)
	}
	return pages, nil
}
