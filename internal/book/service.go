// Package book orchestrates the audiobook pipeline: deriving chunks from a
// source document, synthesizing them, and rebuilding chapter and book audio
// from whatever chunk audio exists on disk.
package book

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/maauso/bookforge/internal/audio"
	"github.com/maauso/bookforge/internal/config"
	"github.com/maauso/bookforge/internal/document"
	"github.com/maauso/bookforge/internal/project"
	"github.com/maauso/bookforge/internal/storage"
	"github.com/maauso/bookforge/internal/tts"
)

const defaultConcurrency = 2

// Service runs Process, Rebuild and Review against a project directory.
type Service struct {
	loader        document.Loader
	synth         tts.Synthesizer
	stitcher      audio.Stitcher
	normalizer    audio.Normalizer
	normalizeOpts audio.NormalizeOpts
	publisher     storage.Storage
	presetDir     string
	concurrency   int
	logger        *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoader replaces the default file loader.
func WithLoader(l document.Loader) Option {
	return func(s *Service) {
		s.loader = l
	}
}

// WithNormalizer enables loudness normalization of the book artifact.
func WithNormalizer(n audio.Normalizer, opts audio.NormalizeOpts) Option {
	return func(s *Service) {
		s.normalizer = n
		s.normalizeOpts = opts
	}
}

// WithPublisher enables publishing of the book artifact after a rebuild.
func WithPublisher(p storage.Storage) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithPresetDir sets the directory searched for preset files.
func WithPresetDir(dir string) Option {
	return func(s *Service) {
		s.presetDir = dir
	}
}

// WithConcurrency limits parallel chunk synthesis. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a Service.
func NewService(synth tts.Synthesizer, stitcher audio.Stitcher, opts ...Option) *Service {
	s := &Service{
		loader:      document.NewFileLoader(),
		synth:       synth,
		stitcher:    stitcher,
		concurrency: defaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// presetFor resolves the preset recorded in meta, keeping the stored voice.
func (s *Service) presetFor(m project.Meta) (config.Preset, error) {
	preset, err := config.LoadPreset(s.presetDir, m.PresetName)
	if err != nil {
		return config.Preset{}, err
	}
	if m.Voice != "" {
		preset.Voice = m.Voice
	}
	return preset, nil
}

// pauses returns the gaps between chunks and between chapters. Projects
// without metadata use the default pacing.
func (s *Service) pauses(p *project.Project) (para, chapter time.Duration, err error) {
	preset := config.DefaultPreset("")
	m, err := p.LoadMeta()
	switch {
	case err == nil:
		if preset, err = s.presetFor(m); err != nil {
			return 0, 0, err
		}
	case !errors.Is(err, project.ErrMetaNotFound):
		return 0, 0, fmt.Errorf("load metadata: %w", err)
	}
	return seconds(preset.PausePara), seconds(preset.PauseChapter), nil
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func ttsOptions(p config.Preset) tts.Options {
	return tts.Options{
		Voice: p.Voice,
		Rate:  p.Rate,
		Pitch: p.Pitch,
		Seed:  p.Seed,
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// publishKey names the published book after its project directory.
func publishKey(p *project.Project) string {
	name := filepath.Base(filepath.Clean(p.Root()))
	if name == "." || name == string(filepath.Separator) {
		name = "book"
	}
	return name + "/book.wav"
}
