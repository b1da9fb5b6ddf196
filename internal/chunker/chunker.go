// Package chunker packs chapter paragraphs into chunks of bounded spoken
// duration. Segmentation is a pure function of its inputs so that a chunk can
// be re-derived later with the same id and text.
package chunker

import (
	"regexp"
	"strings"
)

// WordsPerMinute is the speaking rate used for duration estimates.
const WordsPerMinute = 160.0

const paragraphSep = "\n\n"

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// Chunk is the unit of speech synthesis.
type Chunk struct {
	ID               int     `json:"id"`
	ChapterIndex     int     `json:"chapter_index"`
	RelativeIndex    int     `json:"relative_index"`
	Text             string  `json:"text"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
}

// EstimateSeconds returns the spoken duration of text at WordsPerMinute.
func EstimateSeconds(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return float64(words) / WordsPerMinute * 60
}

// Paragraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range blankLineRe.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Segment greedily packs the paragraphs of a chapter into chunks.
//
// A paragraph is appended to the current buffer unless the buffer is
// non-empty and the combined estimate would exceed targetSecs, in which case
// the buffer is emitted first. Paragraphs are never split, so a single long
// paragraph becomes its own over-length chunk. Ids start at startingID and
// increase by one per chunk; relative indices start at 0.
func Segment(chapterText string, targetSecs float64, chapterIndex, startingID int) []Chunk {
	st := segmenter{chapterIndex: chapterIndex, nextID: startingID}
	for _, p := range Paragraphs(chapterText) {
		st = st.add(p, targetSecs)
	}
	return st.flush().chunks
}

// segmenter is the fold state threaded through Segment. Its methods return
// a new state rather than mutating the receiver.
type segmenter struct {
	chapterIndex int
	buffer       []string
	chunks       []Chunk
	nextID       int
	nextRelative int
}

func (s segmenter) add(paragraph string, targetSecs float64) segmenter {
	candidate := strings.Join(append(s.buffer[:len(s.buffer):len(s.buffer)], paragraph), paragraphSep)
	if len(s.buffer) > 0 && EstimateSeconds(candidate) > targetSecs {
		s = s.flush()
	}
	s.buffer = append(s.buffer[:len(s.buffer):len(s.buffer)], paragraph)
	return s
}

func (s segmenter) flush() segmenter {
	if len(s.buffer) == 0 {
		return s
	}

	text := strings.Join(s.buffer, paragraphSep)
	s.chunks = append(s.chunks[:len(s.chunks):len(s.chunks)], Chunk{
		ID:               s.nextID,
		ChapterIndex:     s.chapterIndex,
		RelativeIndex:    s.nextRelative,
		Text:             text,
		EstimatedSeconds: EstimateSeconds(text),
	})
	s.nextID++
	s.nextRelative++
	s.buffer = nil
	return s
}
