package chapters

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var chapterKeywords = []string{
	"chapter", "part", "section", "book",
	"prologue", "epilogue", "introduction",
	"preface", "afterword", "interlude",
}

var sceneBreaks = []string{"***", "---", "* * *", "\u2026"}

// HeuristicDetector scores each short line by additive layout and
// vocabulary features. Used for sources without explicit headings.
type HeuristicDetector struct{}

var _ Detector = HeuristicDetector{}

// Detect implements Detector.
func (HeuristicDetector) Detect(lines []string, minConfidence float64) []Boundary {
	var out []Boundary
	for i, line := range lines {
		s := strings.TrimSpace(line)
		n := utf8.RuneCountInString(s)
		if n == 0 || n > 100 {
			continue
		}

		score := min(1.0, heuristicScore(lines, i, s, n))
		if score >= minConfidence {
			out = append(out, Boundary{
				LineIndex:  i,
				Title:      s,
				Confidence: score,
				Strategy:   string(StrategyHeuristic),
			})
		}
	}
	return filterOverlapping(out)
}

func heuristicScore(lines []string, i int, s string, n int) float64 {
	var score float64

	first, _ := utf8.DecodeRuneInString(s)
	if unicode.IsUpper(first) && n >= 5 && n <= 50 {
		score += 0.2
	}

	lower := strings.ToLower(s)
	if slices.ContainsFunc(chapterKeywords, func(k string) bool { return strings.Contains(lower, k) }) {
		score += 0.3
	}

	if hasBlankContext(lines, i, 2) {
		score += 0.2
	}

	if i+1 < len(lines) && (strings.HasPrefix(lines[i+1], "    ") || strings.HasPrefix(lines[i+1], "\t")) {
		score += 0.1
	}

	if i > 0 && slices.Contains(sceneBreaks, strings.TrimSpace(lines[i-1])) {
		score += 0.2
	}

	if isCentered(lines[i]) {
		score += 0.15
	}

	if afterLongGap(lines, i, 3) {
		score += 0.15
	}

	return score
}

// isCentered reports whether a line has a large leading indent and short
// content, which is how centered headings survive plain-text conversion.
func isCentered(line string) bool {
	if line == "" || (line[0] != ' ' && line[0] != '\t') {
		return false
	}
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	leading := utf8.RuneCountInString(line) - utf8.RuneCountInString(trimmed)
	return leading > 4 && utf8.RuneCountInString(strings.TrimSpace(line)) < 60
}
