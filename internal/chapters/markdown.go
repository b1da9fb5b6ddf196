package chapters

import (
	"regexp"
	"strings"
)

var markdownHeaderRe = regexp.MustCompile(`^#{1,2}\s+.+$`)

// MarkdownDetector treats "#" and "##" headers as chapter starts.
// It ignores the minimum confidence and does not filter overlaps.
type MarkdownDetector struct{}

var _ Detector = MarkdownDetector{}

// Detect implements Detector.
func (MarkdownDetector) Detect(lines []string, _ float64) []Boundary {
	var out []Boundary
	for i, line := range lines {
		s := strings.TrimSpace(line)
		if !markdownHeaderRe.MatchString(s) {
			continue
		}

		confidence := 0.9
		if !strings.HasPrefix(s, "##") {
			confidence = 1.0
		}
		out = append(out, Boundary{
			LineIndex:  i,
			Title:      strings.TrimSpace(strings.TrimLeft(s, "#")),
			Confidence: confidence,
			Strategy:   string(StrategyMarkdown),
		})
	}
	return out
}
