package book

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/maauso/bookforge/internal/chapters"
	"github.com/maauso/bookforge/internal/chunker"
	"github.com/maauso/bookforge/internal/config"
	"github.com/maauso/bookforge/internal/project"
	"github.com/maauso/bookforge/internal/textproc"
	"github.com/maauso/bookforge/internal/tts"
)

// ProcessRequest describes a full pass over a source document.
type ProcessRequest struct {
	InputPath string
	// PresetName selects the voice preset; empty means the default preset.
	PresetName string
	// Voice overrides the preset voice when set.
	Voice         string
	Strategy      chapters.Strategy
	MinConfidence float64
	// Resume skips chunks whose audio file already exists.
	Resume bool
	// SkipRebuild stops after synthesis.
	SkipRebuild bool
}

// ProcessResult summarizes a full pass.
type ProcessResult struct {
	Chapters    int
	Chunks      int
	Synthesized int
	Resumed     int
	Rebuild     *RebuildResult
}

// Process derives chunks from the source document, records metadata and the
// full index, synthesizes every chunk and, unless disabled, rebuilds the
// chapter and book artifacts.
func (s *Service) Process(ctx context.Context, p *project.Project, req ProcessRequest) (*ProcessResult, error) {
	if req.InputPath == "" {
		return nil, ErrInputRequired
	}
	if req.Strategy == "" {
		req.Strategy = chapters.StrategyAuto
	}
	if _, err := chapters.ParseStrategy(string(req.Strategy)); err != nil {
		return nil, err
	}

	presetName := req.PresetName
	if presetName == "" {
		presetName = config.DefaultPresetName
	}
	preset, err := config.LoadPreset(s.presetDir, presetName)
	if err != nil {
		return nil, err
	}
	if req.Voice != "" {
		preset.Voice = req.Voice
	}

	source, err := filepath.Abs(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	doc, err := s.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	meta := project.Meta{
		SourceFile:           source,
		PresetName:           presetName,
		Voice:                preset.Voice,
		ChapterStrategy:      string(req.Strategy),
		ChapterMinConfidence: req.MinConfidence,
		TargetChunkSecs:      preset.TargetChunkSecs,
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	settings, err := SettingsFromMeta(meta)
	if err != nil {
		return nil, err
	}
	derived, err := DeriveChunks(doc, settings)
	if err != nil {
		return nil, err
	}

	s.logger.Info("chunks derived",
		slog.String("title", doc.Title),
		slog.Int("chapters", len(derived.Chapters)),
		slog.Int("chunks", len(derived.Chunks)),
	)

	// The index is written once, before synthesis, so it always describes
	// a complete pass.
	if err := p.SaveMeta(meta); err != nil {
		return nil, err
	}
	if err := p.SaveIndex(indexEntries(derived.Chunks)); err != nil {
		return nil, err
	}

	synthesized, resumed, err := s.synthesizeAll(ctx, p, derived.Chunks, ttsOptions(preset), req.Resume)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{
		Chapters:    len(derived.Chapters),
		Chunks:      len(derived.Chunks),
		Synthesized: synthesized,
		Resumed:     resumed,
	}
	if req.SkipRebuild {
		return result, nil
	}

	if result.Rebuild, err = s.Rebuild(ctx, p, RebuildOptions{}); err != nil {
		return nil, err
	}
	return result, nil
}

// synthesizeAll renders chunks with bounded concurrency. It returns the
// number of chunks synthesized and the number skipped because their audio
// already existed.
func (s *Service) synthesizeAll(ctx context.Context, p *project.Project, chunks []chunker.Chunk, opts tts.Options, resume bool) (int, int, error) {
	var synthesized, resumed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, c := range chunks {
		outPath := p.ChunkPath(project.ChunkFileName(c.ID))
		if resume && fileExists(outPath) {
			resumed.Add(1)
			continue
		}

		g.Go(func() error {
			if err := s.synthesizeChunk(gctx, c, opts, outPath); err != nil {
				return err
			}
			synthesized.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return int(synthesized.Load()), int(resumed.Load()), nil
}

func (s *Service) synthesizeChunk(ctx context.Context, c chunker.Chunk, opts tts.Options, outPath string) error {
	s.logger.Debug("synthesizing chunk",
		slog.Int("chunk_id", c.ID),
		slog.Int("chapter_index", c.ChapterIndex),
		slog.Float64("estimated_seconds", c.EstimatedSeconds),
	)

	if err := s.synth.Synthesize(ctx, textproc.Sanitize(c.Text), opts, outPath); err != nil {
		s.logger.Error("chunk synthesis failed",
			slog.Int("chunk_id", c.ID),
			slog.String("error", err.Error()),
		)
		return &SynthesisError{ChunkID: c.ID, Err: err}
	}
	return nil
}
