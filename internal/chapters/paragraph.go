package chapters

import "strings"

const (
	paragraphGapLines      = 5
	paragraphGapConfidence = 0.4
)

// ParagraphDetector starts a chapter at the first non-blank line after a run
// of at least five blank lines. It always reports confidence 0.4 and ignores
// the minimum confidence.
type ParagraphDetector struct{}

var _ Detector = ParagraphDetector{}

// Detect implements Detector.
func (ParagraphDetector) Detect(lines []string, _ float64) []Boundary {
	var out []Boundary
	blankRun := 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankRun++
			continue
		}
		if blankRun >= paragraphGapLines {
			out = append(out, Boundary{
				LineIndex:  i,
				Confidence: paragraphGapConfidence,
				Strategy:   "paragraph_break",
			})
		}
		blankRun = 0
	}
	return out
}
