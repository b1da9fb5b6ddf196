// Package chapters detects chapter boundaries in a document and splits the
// document into chapters.
package chapters

import (
	"errors"
	"fmt"
)

// Strategy names a boundary detection strategy.
type Strategy string

// Detection strategies.
const (
	StrategyAuto       Strategy = "auto"
	StrategyMarkdown   Strategy = "markdown"
	StrategyStructured Strategy = "structured"
	StrategyHeuristic  Strategy = "heuristic"
	StrategyParagraph  Strategy = "paragraph"
	StrategyNone       Strategy = "none"
)

// ErrUnknownStrategy is returned when a strategy name is not recognized.
var ErrUnknownStrategy = errors.New("unknown chapter detection strategy")

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategyAuto, StrategyMarkdown, StrategyStructured,
		StrategyHeuristic, StrategyParagraph, StrategyNone:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Boundary is a line at which a chapter starts.
type Boundary struct {
	// LineIndex is the 0-based line of the document where the chapter begins.
	LineIndex int `json:"line_index"`

	// Title is the detected chapter title. Empty when the strategy
	// does not produce one.
	Title string `json:"title,omitempty"`

	// Confidence is in [0, 1] and only comparable within one run.
	Confidence float64 `json:"confidence"`

	// Strategy tags the rule that produced the boundary, e.g.
	// "markdown" or "structured:chapter_number".
	Strategy string `json:"strategy"`
}

// Detector finds candidate boundaries in a sequence of lines.
// Implementations must be pure: the same input always yields the same output.
type Detector interface {
	Detect(lines []string, minConfidence float64) []Boundary
}
