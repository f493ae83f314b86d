package helpers

import (
	"strings"
	"unicode/utf8"
)

// MarkdownTable builds a GitHub-flavoured markdown table
type MarkdownTable struct {
	headers []string
	rows    [][]string
}

// NewMarkdownTable creates a table with the given column headers
func NewMarkdownTable(headers ...string) *MarkdownTable {
	return &MarkdownTable{headers: headers}
}

// AddRow appends a row. Missing cells are rendered empty, extra cells are dropped.
func (t *MarkdownTable) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows
func (t *MarkdownTable) Len() int {
	return len(t.rows)
}

// String renders the table followed by a trailing newline
func (t *MarkdownTable) String() string {
	var b strings.Builder
	writeRow(&b, t.headers)
	b.WriteString("|")
	for range t.headers {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, row := range t.rows {
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// Truncate shortens text to at most max runes, marking the cut with an ellipsis
func Truncate(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
