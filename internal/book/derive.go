package book

import (
	"fmt"

	"github.com/maauso/bookforge/internal/chapters"
	"github.com/maauso/bookforge/internal/chunker"
	"github.com/maauso/bookforge/internal/document"
	"github.com/maauso/bookforge/internal/project"
	"github.com/maauso/bookforge/internal/textproc"
)

// Settings are the inputs that determine chunk derivation. Identical
// settings over an identical document always yield identical chunks.
type Settings struct {
	Strategy        chapters.Strategy
	MinConfidence   float64
	TargetChunkSecs float64
}

// SettingsFromMeta rebuilds the derivation settings stored with a project.
func SettingsFromMeta(m project.Meta) (Settings, error) {
	strategy, err := chapters.ParseStrategy(m.ChapterStrategy)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Strategy:        strategy,
		MinConfidence:   m.ChapterMinConfidence,
		TargetChunkSecs: m.TargetChunkSecs,
	}, nil
}

// Derivation is the result of DeriveChunks.
type Derivation struct {
	Chapters []chapters.Chapter
	Chunks   []chunker.Chunk
}

// DeriveChunks detects chapters, cleans each chapter and segments it.
// Chunk ids run across the whole book: each chapter starts one past the
// previous chapter's last id.
func DeriveChunks(doc *document.Document, s Settings) (Derivation, error) {
	boundaries, err := chapters.Detect(doc.Lines, s.Strategy, s.MinConfidence)
	if err != nil {
		return Derivation{}, fmt.Errorf("detect chapters: %w", err)
	}

	chs := chapters.Split(doc, boundaries)
	var chunks []chunker.Chunk
	nextID := 0
	for _, ch := range chs {
		segmented := chunker.Segment(textproc.Clean(ch.Text), s.TargetChunkSecs, ch.Index, nextID)
		if n := len(segmented); n > 0 {
			nextID = segmented[n-1].ID + 1
		}
		chunks = append(chunks, segmented...)
	}

	return Derivation{Chapters: chs, Chunks: chunks}, nil
}

// indexEntries converts derived chunks to index entries with their
// deterministic audio file names.
func indexEntries(chunks []chunker.Chunk) []project.IndexEntry {
	entries := make([]project.IndexEntry, 0, len(chunks))
	for _, c := range chunks {
		entries = append(entries, project.IndexEntry{
			ID:               c.ID,
			ChapterIndex:     c.ChapterIndex,
			RelativeIndex:    c.RelativeIndex,
			AudioFile:        project.ChunkFileName(c.ID),
			Text:             c.Text,
			EstimatedSeconds: c.EstimatedSeconds,
		})
	}
	return entries
}
