package textproc

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	paragraphRunRe = regexp.MustCompile(`\n{2,}`)
	sentenceEndRe  = regexp.MustCompile(`([.!?])[ \t]+`)
)

var invisibleReplacer = strings.NewReplacer(
	"\u200b", "",
	"\ufeff", "",
	"\r", "",
	"\u2014", " - ",
	"\u2013", " - ",
)

// abbreviations are expanded so engines do not spell them out.
var abbreviations = strings.NewReplacer(
	"e.g.", "for example",
	"E.g.", "For example",
	"i.e.", "that is",
	"I.e.", "That is",
	"etc.", "et cetera",
	"vs.", "versus",
	"c.f.", "compare",
	"et al.", "and others",
	"ibid.", "same source",
	"op. cit.", "previously cited",
)

// Sanitize prepares chunk text for a speech engine: NFKC normalization,
// removal of invisible characters, dash and abbreviation expansion, and
// whitespace collapsing that keeps paragraph breaks.
func Sanitize(text string) string {
	text = norm.NFKC.String(text)
	text = invisibleReplacer.Replace(text)
	text = abbreviations.Replace(text)
	text = sentenceEndRe.ReplaceAllString(text, "$1 ")
	text = paragraphRunRe.ReplaceAllString(text, "\n\n")
	text = hspaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(strings.ToValidUTF8(text, ""))
}
