package pdf

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// cellGap is the horizontal whitespace (in points) that separates
	// two table cells on the same row.
	cellGap = 18.0
	// wordGap is the spacing above which two text runs inside a cell
	// get a space between them when joined.
	wordGap = 2.0
	// minTableRows is the minimum run of multi-cell rows that counts
	// as a table rather than incidental layout.
	minTableRows = 2
)

// detectTables groups consecutive multi-column rows into tables. The
// PDF format carries no table markup, so this is a coordinate-gap
// heuristic: a row whose text runs cluster into two or more cells is a
// candidate table row, and a run of at least minTableRows of them is
// emitted as one table.
func detectTables(rows pdf.Rows) [][][]string {
	var tables [][][]string
	var current [][]string

	flush := func() {
		if len(current) >= minTableRows {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, row := range rows {
		cells := splitCells(row)
		if len(cells) >= 2 {
			current = append(current, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// splitCells clusters the text runs of one row into cells by horizontal
// gap. Runs are sorted left to right first; GetTextByRow groups by
// vertical position only.
func splitCells(row *pdf.Row) []string {
	runs := make(pdf.TextHorizontal, len(row.Content))
	copy(runs, row.Content)
	sort.Sort(runs)

	var cells []string
	var cell strings.Builder
	prevEnd := 0.0
	for i, t := range runs {
		if t.S == "" {
			continue
		}
		gap := t.X - prevEnd
		switch {
		case i == 0 || cell.Len() == 0:
			// first run of the row or of a fresh cell
		case gap > cellGap:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		case gap > wordGap:
			cell.WriteByte(' ')
		}
		cell.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	if cell.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cell.String()))
	}
	return cells
}
