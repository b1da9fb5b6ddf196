// Package document holds the immutable line-oriented view of a source text
// and the loaders that produce it from files on disk.
package document

import "strings"

// Document is an ordered sequence of lines plus a title.
// Line indices are 0-based and are the reference for every chapter boundary.
type Document struct {
	Title string
	Lines []string
}

// New builds a Document from raw text. CRLF and lone CR line endings are
// normalized to LF before splitting.
func New(title, text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return &Document{
		Title: title,
		Lines: strings.Split(text, "\n"),
	}
}

// Text joins the lines back into a single string.
func (d *Document) Text() string {
	return strings.Join(d.Lines, "\n")
}

// Span returns the text of lines [start, end). Out-of-range bounds are clamped.
func (d *Document) Span(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.Lines) {
		end = len(d.Lines)
	}
	if start >= end {
		return ""
	}
	return strings.Join(d.Lines[start:end], "\n")
}
