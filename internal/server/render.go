package server

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
)

// renderMarkdown converts a model answer to HTML for the web UI.
// Models routinely answer in markdown (lists, bold terms); rendering
// it beats dumping raw asterisks on the user. On conversion failure
// the escaped plain text is returned instead.
func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return buf.String()
}
