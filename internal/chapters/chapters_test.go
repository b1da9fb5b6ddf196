package chapters

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/bookforge/internal/document"
)

const bodyLine = "the rain kept falling over the valley while the old man walked home slowly."

// bookLines builds a document where each heading is framed by blank lines and
// followed by enough body text to survive overlap filtering.
func bookLines(headings ...string) []string {
	var lines []string
	for _, h := range headings {
		lines = append(lines, "", h, "")
		for j := 0; j < 12; j++ {
			lines = append(lines, bodyLine)
		}
	}
	return lines
}

func lineIndices(bs []Boundary) []int {
	out := make([]int, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.LineIndex)
	}
	return out
}

func TestDetect_Markdown(t *testing.T) {
	doc := document.New("t", "# Intro\n\ntext\n\n# Chapter One\n\nmore text")

	got, err := Detect(doc.Lines, StrategyMarkdown, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].LineIndex)
	assert.Equal(t, "Intro", got[0].Title)
	assert.Equal(t, 1.0, got[0].Confidence)
	assert.Equal(t, 4, got[1].LineIndex)
	assert.Equal(t, "Chapter One", got[1].Title)
	assert.Equal(t, 1.0, got[1].Confidence)
	assert.Equal(t, "markdown", got[1].Strategy)
}

func TestDetect_MarkdownSecondLevel(t *testing.T) {
	lines := []string{"## Part A", "body", "### not a chapter", "#hashtag"}

	got, err := Detect(lines, StrategyMarkdown, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Part A", got[0].Title)
	assert.Equal(t, 0.9, got[0].Confidence)
}

func TestDetect_Structured(t *testing.T) {
	lines := bookLines("CHAPTER I", "Chapter Two: The Storm", "Prologue", "Part One")

	got, err := Detect(lines, StrategyStructured, 0.7)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, []int{1, 16, 31, 46}, lineIndices(got))
	assert.Equal(t, "structured:chapter_number", got[0].Strategy)
	assert.Equal(t, "structured:chapter_number", got[1].Strategy)
	assert.Equal(t, "Chapter Two: The Storm", got[1].Title)
	assert.Equal(t, "structured:special_section", got[2].Strategy)
	assert.Equal(t, "structured:part_marker", got[3].Strategy)
	for _, b := range got {
		assert.LessOrEqual(t, b.Confidence, 1.0)
	}
}

func TestDetect_StructuredConfidenceAdjustments(t *testing.T) {
	// Standalone numeral in running text: no blank context, not near the start.
	lines := make([]string, 0, 20)
	for i := 0; i < 10; i++ {
		lines = append(lines, bodyLine)
	}
	lines = append(lines, "XII")
	lines = append(lines, bodyLine)

	got, err := Detect(lines, StrategyStructured, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "structured:standalone_number", got[0].Strategy)
	assert.InDelta(t, 0.7, got[0].Confidence, 1e-9)

	// Same numeral framed by blank lines gains 0.1.
	lines[9], lines[11] = "", ""
	got, err = Detect(lines, StrategyStructured, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.8, got[0].Confidence, 1e-9)
}

func TestDetect_Heuristic(t *testing.T) {
	var lines []string
	for _, title := range []string{"The Long Night", "Morning Comes", "A Quiet Road"} {
		lines = append(lines, "", "", "", "        "+title, "", "")
		for j := 0; j < 12; j++ {
			lines = append(lines, bodyLine)
		}
	}

	got, err := Detect(lines, StrategyHeuristic, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []int{3, 21, 39}, lineIndices(got))
	assert.Equal(t, "The Long Night", got[0].Title)
	assert.Equal(t, "heuristic", got[0].Strategy)
	// capitalized 0.2 + blank context 0.2 + centered 0.15 + long gap 0.15
	assert.InDelta(t, 0.7, got[0].Confidence, 1e-9)
}

func TestDetect_HeuristicSceneBreak(t *testing.T) {
	lines := []string{bodyLine, "* * *", "Interlude", "    indented start", bodyLine}

	got, err := Detect(lines, StrategyHeuristic, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].LineIndex)
	// capitalized 0.2 + keyword 0.3 + indented next 0.1 + scene break 0.2
	assert.InDelta(t, 0.8, got[0].Confidence, 1e-9)
}

func TestDetect_Paragraph(t *testing.T) {
	lines := []string{"intro", "", "", "", "", "", "next part", "", "", "short gap"}

	got, err := Detect(lines, StrategyParagraph, 0.99)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 6, got[0].LineIndex)
	assert.Equal(t, 0.4, got[0].Confidence)
	assert.Empty(t, got[0].Title)
	assert.Equal(t, "paragraph_break", got[0].Strategy)
}

func TestDetect_NoneAlwaysEmpty(t *testing.T) {
	for _, text := range []string{"", "# Title\nbody", strings.Join(bookLines("CHAPTER I", "CHAPTER II", "CHAPTER III"), "\n")} {
		got, err := Detect(document.New("t", text).Lines, StrategyNone, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestDetect_ThresholdSaturation(t *testing.T) {
	lines := bookLines("CHAPTER I", "PROLOGUE", "Part Two", "        Interlude")

	for _, s := range []Strategy{StrategyStructured, StrategyHeuristic} {
		got, err := Detect(lines, s, 1.1)
		require.NoError(t, err)
		assert.Empty(t, got, "strategy %s", s)
	}
}

func TestDetect_UnknownStrategy(t *testing.T) {
	_, err := Detect([]string{"x"}, Strategy("bogus"), 0.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestDetect_OverlapFilter(t *testing.T) {
	var lines []string
	for i := 1; i <= 40; i++ {
		lines = append(lines, "", fmt.Sprintf("CHAPTER %d", i), "", "    "+bodyLine)
	}

	for _, s := range []Strategy{StrategyStructured, StrategyHeuristic} {
		got, err := Detect(lines, s, 0.5)
		require.NoError(t, err)
		require.NotEmpty(t, got, "strategy %s", s)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i].LineIndex-got[i-1].LineIndex, 10, "strategy %s", s)
		}
	}
}

func TestFilterOverlapping(t *testing.T) {
	in := []Boundary{{LineIndex: 25}, {LineIndex: 3}, {LineIndex: 12}, {LineIndex: 14}, {LineIndex: 40}}

	got := filterOverlapping(in)
	assert.Equal(t, []int{3, 14, 25, 40}, lineIndices(got))
	assert.Nil(t, filterOverlapping(nil))
}

func TestDetect_Auto(t *testing.T) {
	t.Run("prefers markdown", func(t *testing.T) {
		lines := append([]string{"# One"}, bookLines("CHAPTER I", "CHAPTER II", "CHAPTER III")...)

		got, err := Detect(lines, StrategyAuto, 0.5)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "markdown", got[0].Strategy)
	})

	t.Run("falls back to structured", func(t *testing.T) {
		got, err := Detect(bookLines("CHAPTER I", "CHAPTER II", "CHAPTER III"), StrategyAuto, 0.99)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.True(t, strings.HasPrefix(got[0].Strategy, "structured:"))
	})

	t.Run("two structured hits are not enough", func(t *testing.T) {
		got, err := Detect(bookLines("CHAPTER I", "CHAPTER II"), StrategyAuto, 0.5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ends with paragraph gaps", func(t *testing.T) {
		lines := []string{bodyLine, "", "", "", "", "", bodyLine}

		got, err := Detect(lines, StrategyAuto, 0.5)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "paragraph_break", got[0].Strategy)
	})
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("heuristic")
	require.NoError(t, err)
	assert.Equal(t, StrategyHeuristic, s)

	_, err = ParseStrategy("fancy")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSplit(t *testing.T) {
	doc := document.New("t", "front matter\n# One\nalpha\n\n# Two\nbeta")
	boundaries := []Boundary{
		{LineIndex: 4, Title: "Two"},
		{LineIndex: 1, Title: "One"},
	}

	got := Split(doc, boundaries)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, "One", got[0].Title)
	assert.Equal(t, "# One\nalpha\n", got[0].Text)
	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, "# Two\nbeta", got[1].Text)
	assert.NotContains(t, got[0].Text, "front matter")
}

func TestSplit_DefaultTitles(t *testing.T) {
	doc := document.New("t", "a\nb\nc\nd")

	got := Split(doc, []Boundary{{LineIndex: 0}, {LineIndex: 2}})
	require.Len(t, got, 2)
	assert.Equal(t, "Chapter 1", got[0].Title)
	assert.Equal(t, "Chapter 2", got[1].Title)
}

func TestSplit_NoBoundaries(t *testing.T) {
	doc := document.New("t", "only\ntext")

	got := Split(doc, nil)
	require.Len(t, got, 1)
	assert.Equal(t, FullTextTitle, got[0].Title)
	assert.Equal(t, "only\ntext", got[0].Text)
}
