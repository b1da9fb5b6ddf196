// Package textproc normalizes source text before chunking and before speech
// synthesis. Every function here is pure: the same input always yields the
// same output, which keeps chunk derivation reproducible.
package textproc

import (
	"regexp"
	"strings"
)

var (
	pageNumberRe    = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
	lineHyphenRe    = regexp.MustCompile(`(\pL)-[ \t]*\n[ \t]*(\pL)`)
	spacedHyphenRe  = regexp.MustCompile(`(\pL)- +(\pL)`)
	hspaceRe        = regexp.MustCompile(`[ \t]+`)
	trailingSpaceRe = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunRe      = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	spaceBeforePunc = regexp.MustCompile(`[ \t]+([.,;:!?])`)
	missingSpaceRe  = regexp.MustCompile(`([,;:!?])(\pL)`)
	sentenceJoinRe  = regexp.MustCompile(`([a-z])\.([A-Z][a-z])`)
	citationRe      = regexp.MustCompile(`\[\d+\]`)
	seeAlsoRe       = regexp.MustCompile(`\(see [^)]+\)`)
)

// repeatedLineLimit is how many times a substantial line may occur before it
// is treated as a running header or footer.
const repeatedLineLimit = 3

var quoteReplacer = strings.NewReplacer(
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`,
	"\u2018", "'", "\u2019", "'",
)

// Clean removes OCR and typesetting artifacts while preserving paragraph
// breaks (blank lines).
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = pageNumberRe.ReplaceAllString(text, "")
	text = lineHyphenRe.ReplaceAllString(text, "$1$2")
	text = spacedHyphenRe.ReplaceAllString(text, "$1$2")
	text = dropRepeatedLines(text)
	text = citationRe.ReplaceAllString(text, "")
	text = seeAlsoRe.ReplaceAllString(text, "")

	text = hspaceRe.ReplaceAllString(text, " ")
	text = trailingSpaceRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	text = spaceBeforePunc.ReplaceAllString(text, "$1")
	text = missingSpaceRe.ReplaceAllString(text, "$1 $2")
	text = sentenceJoinRe.ReplaceAllString(text, "$1. $2")
	text = quoteReplacer.Replace(text)

	return strings.TrimSpace(text)
}

// dropRepeatedLines removes lines longer than 10 characters that occur more
// than repeatedLineLimit times.
func dropRepeatedLines(text string) string {
	lines := strings.Split(text, "\n")
	counts := make(map[string]int)
	for _, line := range lines {
		if s := strings.TrimSpace(line); len(s) > 10 {
			counts[s]++
		}
	}

	kept := lines[:0]
	for _, line := range lines {
		if counts[strings.TrimSpace(line)] > repeatedLineLimit {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
