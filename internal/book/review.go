package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maauso/bookforge/internal/chunker"
	"github.com/maauso/bookforge/internal/project"
)

// ReviewRequest selects the chunk to re-render.
type ReviewRequest struct {
	ChunkID int
	// Text, when non-nil, replaces the derived chunk text.
	Text *string
}

// Review re-synthesizes one chunk and rebuilds the book.
//
// The chunk is located in the stored index, then re-derived from the
// source document with the stored settings. Only that chunk's audio file is
// rewritten; the rebuild uses the stored index unchanged.
func (s *Service) Review(ctx context.Context, p *project.Project, req ReviewRequest) (*RebuildResult, error) {
	entries, err := p.LoadIndex()
	if err != nil {
		return nil, err
	}
	entry, ok := project.FindEntry(entries, req.ChunkID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrChunkNotFound, req.ChunkID)
	}

	meta, err := p.LoadMeta()
	if err == nil {
		err = meta.Validate()
	}
	if err != nil {
		if errors.Is(err, project.ErrMetaNotFound) || errors.Is(err, project.ErrInvalidMeta) {
			return nil, fmt.Errorf("%w: %w", ErrMissingMetadata, err)
		}
		return nil, err
	}

	chunk, err := s.rederive(ctx, meta, entry)
	if err != nil {
		return nil, err
	}
	if req.Text != nil {
		chunk.Text = *req.Text
	}

	preset, err := s.presetFor(meta)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reviewing chunk",
		slog.Int("chunk_id", chunk.ID),
		slog.Int("chapter_index", chunk.ChapterIndex),
		slog.Bool("text_override", req.Text != nil),
	)

	if err := s.synthesizeChunk(ctx, chunk, ttsOptions(preset), p.ChunkPath(entry.AudioFile)); err != nil {
		return nil, err
	}

	return s.rebuild(ctx, p, entries, RebuildOptions{})
}

// rederive regenerates the chunk matching entry from the source document.
func (s *Service) rederive(ctx context.Context, meta project.Meta, entry project.IndexEntry) (chunker.Chunk, error) {
	settings, err := SettingsFromMeta(meta)
	if err != nil {
		return chunker.Chunk{}, fmt.Errorf("%w: %w", ErrMissingMetadata, err)
	}
	doc, err := s.loader.Load(ctx, meta.SourceFile)
	if err != nil {
		return chunker.Chunk{}, fmt.Errorf("load document: %w", err)
	}
	derived, err := DeriveChunks(doc, settings)
	if err != nil {
		return chunker.Chunk{}, err
	}

	for _, c := range derived.Chunks {
		if c.ID == entry.ID && c.ChapterIndex == entry.ChapterIndex {
			return c, nil
		}
	}
	return chunker.Chunk{}, fmt.Errorf("%w: %d is no longer derived from %s", ErrChunkNotFound, entry.ID, meta.SourceFile)
}
