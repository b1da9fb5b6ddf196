package book

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/maauso/bookforge/internal/audio"
	"github.com/maauso/bookforge/internal/project"
	"github.com/maauso/bookforge/internal/storage"
)

// RebuildOptions configures Rebuild.
type RebuildOptions struct {
	// SkipFirstChunks drops that many entries, in id order, before grouping.
	SkipFirstChunks int
}

// RebuildResult describes the artifacts a rebuild produced.
type RebuildResult struct {
	ChapterPaths []string `json:"chapter_paths,omitempty"`
	BookPath     string   `json:"book_path,omitempty"`
	// SkippedChunkIDs lists index entries whose audio file was missing.
	SkippedChunkIDs []int  `json:"skipped_chunk_ids,omitempty"`
	PublishedURL    string `json:"published_url,omitempty"`
	// NothingToRebuild is set when no chapter had any audio. It is an
	// outcome, not an error.
	NothingToRebuild bool `json:"nothing_to_rebuild"`
}

// Rebuild stitches chapter and book audio from the project's stored index.
func (s *Service) Rebuild(ctx context.Context, p *project.Project, opts RebuildOptions) (*RebuildResult, error) {
	entries, err := p.LoadIndex()
	if err != nil {
		return nil, err
	}
	return s.rebuild(ctx, p, entries, opts)
}

func (s *Service) rebuild(ctx context.Context, p *project.Project, entries []project.IndexEntry, opts RebuildOptions) (*RebuildResult, error) {
	entries = project.SortedByID(entries)
	skip := max(opts.SkipFirstChunks, 0)
	if skip >= len(entries) {
		s.logger.Info("nothing to rebuild", slog.Int("entries", len(entries)), slog.Int("skip_first_chunks", skip))
		return &RebuildResult{NothingToRebuild: true}, nil
	}
	entries = entries[skip:]

	paraGap, chapterGap, err := s.pauses(p)
	if err != nil {
		return nil, err
	}

	groups := make(map[int][]project.IndexEntry)
	for _, e := range entries {
		groups[e.ChapterIndex] = append(groups[e.ChapterIndex], e)
	}

	result := &RebuildResult{}
	for _, chapterIndex := range slices.Sorted(maps.Keys(groups)) {
		path, skipped, err := s.stitchChapter(ctx, p, chapterIndex, groups[chapterIndex], paraGap)
		result.SkippedChunkIDs = append(result.SkippedChunkIDs, skipped...)
		if err != nil {
			return nil, err
		}
		if path != "" {
			result.ChapterPaths = append(result.ChapterPaths, path)
		}
	}

	if len(result.ChapterPaths) == 0 {
		s.logger.Info("nothing to rebuild: no chunk audio found",
			slog.Int("skipped_chunks", len(result.SkippedChunkIDs)),
		)
		result.NothingToRebuild = true
		return result, nil
	}

	bookPath := p.BookPath()
	if err := s.stitcher.Stitch(ctx, result.ChapterPaths, bookPath, audio.StitchOpts{Gap: chapterGap}); err != nil {
		return nil, &StitchError{ChapterIndex: BookChapterIndex, Err: err}
	}
	result.BookPath = bookPath

	if s.normalizer != nil {
		if err := s.normalizer.Normalize(ctx, bookPath, bookPath, s.normalizeOpts); err != nil {
			return nil, fmt.Errorf("normalize book: %w", err)
		}
	}

	if s.publisher != nil {
		url, err := storage.PublishFile(ctx, s.publisher, publishKey(p), bookPath)
		if err != nil {
			return nil, fmt.Errorf("publish book: %w", err)
		}
		result.PublishedURL = url
	}

	s.logger.Info("book rebuilt",
		slog.String("path", bookPath),
		slog.Int("chapters", len(result.ChapterPaths)),
		slog.Int("skipped_chunks", len(result.SkippedChunkIDs)),
	)
	return result, nil
}

// stitchChapter stitches the chunk files of one chapter that exist on disk.
// It returns an empty path when none exist.
func (s *Service) stitchChapter(ctx context.Context, p *project.Project, chapterIndex int, entries []project.IndexEntry, gap time.Duration) (string, []int, error) {
	var files []string
	var skipped []int
	for _, e := range entries {
		path := p.ChunkPath(e.AudioFile)
		if !fileExists(path) {
			skipped = append(skipped, e.ID)
			continue
		}
		files = append(files, path)
	}
	if len(files) == 0 {
		s.logger.Warn("chapter has no chunk audio", slog.Int("chapter_index", chapterIndex))
		return "", skipped, nil
	}

	out := p.ChapterPath(chapterIndex)
	if err := s.stitcher.Stitch(ctx, files, out, audio.StitchOpts{Gap: gap}); err != nil {
		return "", skipped, &StitchError{ChapterIndex: chapterIndex, Err: err}
	}
	return out, skipped, nil
}
