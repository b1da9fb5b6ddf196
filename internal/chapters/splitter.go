package chapters

import (
	"fmt"
	"slices"

	"github.com/maauso/bookforge/internal/document"
)

// FullTextTitle is the title of the single chapter used when no boundary
// was detected.
const FullTextTitle = "Full Text"

// Chapter is a contiguous span of document lines.
type Chapter struct {
	Index     int    `json:"index"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Split cuts doc at the given boundaries. Chapter i spans from boundary i to
// boundary i+1 (the last one to the end of the document). Lines before the
// first boundary are not part of any chapter.
//
// With no boundaries the whole document becomes one chapter titled
// FullTextTitle.
func Split(doc *document.Document, boundaries []Boundary) []Chapter {
	if len(boundaries) == 0 {
		return []Chapter{{
			Index:     0,
			Title:     FullTextTitle,
			Text:      doc.Text(),
			StartLine: 0,
			EndLine:   len(doc.Lines),
		}}
	}

	sorted := slices.Clone(boundaries)
	slices.SortStableFunc(sorted, func(a, b Boundary) int { return a.LineIndex - b.LineIndex })

	chapters := make([]Chapter, 0, len(sorted))
	for i, b := range sorted {
		end := len(doc.Lines)
		if i+1 < len(sorted) {
			end = sorted[i+1].LineIndex
		}

		title := b.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}

		chapters = append(chapters, Chapter{
			Index:     i,
			Title:     title,
			Text:      doc.Span(b.LineIndex, end),
			StartLine: b.LineIndex,
			EndLine:   end,
		})
	}
	return chapters
}
