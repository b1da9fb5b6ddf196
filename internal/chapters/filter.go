package chapters

import (
	"slices"
	"strings"
)

// minBoundaryDistance is the minimum number of lines between two kept
// boundaries.
const minBoundaryDistance = 10

// filterOverlapping sorts boundaries by line and keeps a boundary only if it
// is at least minBoundaryDistance lines after the last kept one.
func filterOverlapping(boundaries []Boundary) []Boundary {
	if len(boundaries) == 0 {
		return nil
	}

	sorted := slices.Clone(boundaries)
	slices.SortStableFunc(sorted, func(a, b Boundary) int { return a.LineIndex - b.LineIndex })

	kept := []Boundary{sorted[0]}
	for _, b := range sorted[1:] {
		if b.LineIndex-kept[len(kept)-1].LineIndex >= minBoundaryDistance {
			kept = append(kept, b)
		}
	}
	return kept
}

// hasBlankContext reports whether the window lines before and after index
// are all blank. Windows are clipped at the document edges.
func hasBlankContext(lines []string, index, window int) bool {
	for i := max(0, index-window); i < index; i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return false
		}
	}
	for i := index + 1; i < min(len(lines), index+window+1); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return false
		}
	}
	return true
}

// afterLongGap reports whether the minBlank lines before index are blank.
func afterLongGap(lines []string, index, minBlank int) bool {
	if index < minBlank {
		return false
	}
	for i := index - minBlank; i < index; i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return false
		}
	}
	return true
}
