package chapters

import (
	"regexp"
	"strings"
)

type structuredRule struct {
	re         *regexp.Regexp
	confidence float64
	kind       string
}

// structuredRules are evaluated top to bottom and the first match wins, so
// explicit chapter markers must precede the generic all-caps rule.
var structuredRules = []structuredRule{
	{regexp.MustCompile(`(?i)^CHAPTER\s+(?:[IVX]+|\d+|[A-Za-z]+)(?:\s*[:\-.]?\s*.{0,50})?$`), 0.95, "chapter_number"},
	{regexp.MustCompile(`(?i)^(?:[IVX]+|\d+)\.\s+[A-Z][A-Za-z\s]+$`), 0.85, "numbered_section"},
	{regexp.MustCompile(`(?i)^\s*(?:[IVX]+|\d+)\s*$`), 0.7, "standalone_number"},
	{regexp.MustCompile(`(?i)^PART\s+(?:[IVX]+|[A-Za-z]+)(?:\s*[:\-.]?\s*.{0,50})?$`), 0.9, "part_marker"},
	{regexp.MustCompile(`(?i)^(?:PROLOGUE|EPILOGUE|PREFACE|INTRODUCTION|CONCLUSION|AFTERWORD)\s*$`), 0.85, "special_section"},
	{regexp.MustCompile(`(?i)^[A-Z][A-Z\s]{3,30}$`), 0.6, "caps_title"},
}

// StructuredDetector matches chapter, part, numbered and special-section
// headings with fixed base confidences, boosted by surrounding whitespace.
type StructuredDetector struct{}

var _ Detector = StructuredDetector{}

// Detect implements Detector.
func (StructuredDetector) Detect(lines []string, minConfidence float64) []Boundary {
	var out []Boundary
	for i, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}

		for _, rule := range structuredRules {
			if !rule.re.MatchString(s) {
				continue
			}

			confidence := rule.confidence
			if hasBlankContext(lines, i, 1) {
				confidence = min(1.0, confidence+0.1)
			}
			if i < 5 || afterLongGap(lines, i, 3) {
				confidence = min(1.0, confidence+0.05)
			}

			if confidence >= minConfidence {
				out = append(out, Boundary{
					LineIndex:  i,
					Title:      s,
					Confidence: confidence,
					Strategy:   string(StrategyStructured) + ":" + rule.kind,
				})
			}
			break
		}
	}
	return filterOverlapping(out)
}
