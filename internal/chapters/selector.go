package chapters

import "fmt"

// Thresholds used by the auto cascade. They are fixed and independent of the
// caller's minimum confidence.
const (
	autoMarkdownMinAverage = 0.8
	autoStructuredMinConf  = 0.7
	autoHeuristicMinConf   = 0.5
	autoMinBoundaries      = 3
)

var detectors = map[Strategy]Detector{
	StrategyMarkdown:   MarkdownDetector{},
	StrategyStructured: StructuredDetector{},
	StrategyHeuristic:  HeuristicDetector{},
	StrategyParagraph:  ParagraphDetector{},
}

// cascadeStep pairs a detector with the predicate that accepts its result.
type cascadeStep struct {
	strategy      Strategy
	minConfidence float64
	accept        func([]Boundary) bool
}

// autoCascade is tried in order; the first accepted result wins and later
// steps are never run.
var autoCascade = []cascadeStep{
	{StrategyMarkdown, 0, func(b []Boundary) bool {
		return len(b) > 0 && averageConfidence(b) > autoMarkdownMinAverage
	}},
	{StrategyStructured, autoStructuredMinConf, atLeast(autoMinBoundaries)},
	{StrategyHeuristic, autoHeuristicMinConf, atLeast(autoMinBoundaries)},
	{StrategyParagraph, 0, func([]Boundary) bool { return true }},
}

// Detect returns the chapter boundaries of lines for the given strategy.
// "none" always yields no boundaries. Only unknown strategies are errors;
// malformed text at worst produces an empty result.
func Detect(lines []string, strategy Strategy, minConfidence float64) ([]Boundary, error) {
	switch strategy {
	case StrategyNone:
		return nil, nil
	case StrategyAuto:
		return detectAuto(lines), nil
	}

	d, ok := detectors[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	return d.Detect(lines, minConfidence), nil
}

func detectAuto(lines []string) []Boundary {
	for _, step := range autoCascade {
		found := detectors[step.strategy].Detect(lines, step.minConfidence)
		if step.accept(found) {
			return found
		}
	}
	return nil
}

func atLeast(n int) func([]Boundary) bool {
	return func(b []Boundary) bool { return len(b) >= n }
}

func averageConfidence(boundaries []Boundary) float64 {
	if len(boundaries) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boundaries {
		sum += b.Confidence
	}
	return sum / float64(len(boundaries))
}
