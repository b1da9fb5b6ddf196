package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int, w string) string {
	return strings.TrimSpace(strings.Repeat(w+" ", n))
}

func TestEstimateSeconds(t *testing.T) {
	assert.Equal(t, 0.0, EstimateSeconds("   "))
	assert.InDelta(t, 60.0, EstimateSeconds(words(160, "word")), 1e-9)
	assert.InDelta(t, 18.75, EstimateSeconds(words(50, "word")), 1e-9)
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("  one \n\n\n two\nstill two \n \n\nthree\n\n")
	assert.Equal(t, []string{"one", "two\nstill two", "three"}, got)
	assert.Empty(t, Paragraphs("\n\n  \n"))
}

func TestSegment_FlushesBeforeOverflow(t *testing.T) {
	p1, p2, p3 := words(50, "alpha"), words(50, "beta"), words(50, "gamma")
	text := p1 + "\n\n" + p2 + "\n\n" + p3

	// Two paragraphs (37.5s) fit under 45s, the third would overflow.
	got := Segment(text, 45, 0, 0)
	require.Len(t, got, 2)
	assert.Equal(t, p1+"\n\n"+p2, got[0].Text)
	assert.Equal(t, p3, got[1].Text)
	assert.InDelta(t, 37.5, got[0].EstimatedSeconds, 1e-9)

	// At 30s every pair overflows, so each paragraph stands alone.
	got = Segment(text, 30, 0, 0)
	require.Len(t, got, 3)
	assert.Equal(t, p2, got[1].Text)
}

func TestSegment_LongParagraphIsNotSplit(t *testing.T) {
	long := words(400, "long")

	got := Segment("short intro\n\n"+long+"\n\nshort outro", 10, 2, 7)
	require.Len(t, got, 3)
	assert.Equal(t, long, got[1].Text)
	assert.Greater(t, got[1].EstimatedSeconds, 10.0)
}

func TestSegment_IdsAndRelativeIndices(t *testing.T) {
	var paras []string
	for i := 0; i < 12; i++ {
		paras = append(paras, words(40, "word"))
	}
	text := strings.Join(paras, "\n\n")

	got := Segment(text, 20, 3, 100)
	require.NotEmpty(t, got)
	for i, c := range got {
		assert.Equal(t, 100+i, c.ID)
		assert.Equal(t, i, c.RelativeIndex)
		assert.Equal(t, 3, c.ChapterIndex)
	}
}

func TestSegment_Deterministic(t *testing.T) {
	text := "First paragraph here.\n\nSecond one is a bit longer than the first.\n\n" + words(90, "x")

	a := Segment(text, 15, 1, 4)
	b := Segment(text, 15, 1, 4)
	assert.Equal(t, a, b)
}

func TestSegment_Empty(t *testing.T) {
	assert.Empty(t, Segment("", 30, 0, 0))
	assert.Empty(t, Segment("\n\n\n", 30, 0, 0))
}
