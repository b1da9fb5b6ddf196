// Package tts renders chunk text to WAV files through a speech engine.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Static errors for speech synthesis.
var (
	// ErrEmptyText is returned when there is nothing to speak.
	ErrEmptyText = errors.New("tts: empty text")
	// ErrVoiceRequired is returned when no voice is configured.
	ErrVoiceRequired = errors.New("tts: voice is required")
)

// Options controls how a chunk is voiced.
type Options struct {
	// Voice is the engine-specific voice or model identifier.
	Voice string
	// Rate scales speaking speed; 1.0 is the engine's normal pace.
	Rate float64
	// Pitch shifts the voice, in the range [-1, 1]. Not every engine honors it.
	Pitch float64
	// Seed is passed to engines with stochastic output.
	Seed int
}

// Synthesizer renders text to a WAV file.
//
// Implementations must overwrite outPath when it already exists and must
// never leave a partially written file at outPath, since the presence of the
// file is how later stages decide a chunk is done.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts Options, outPath string) error
}

// EngineError reports a failed engine invocation.
type EngineError struct {
	Engine string
	Stderr string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("tts: %s failed: %v: %s", e.Engine, e.Err, e.Stderr)
	}
	return fmt.Sprintf("tts: %s failed: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// writeAtomic lets write produce a sibling temp file and renames it onto
// outPath only if write succeeds.
func writeAtomic(outPath string, write func(tmpPath string) error) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmpPath := outPath + ".part"
	if err := write(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move %s into place: %w", filepath.Base(outPath), err)
	}
	return nil
}

func checkInput(ctx context.Context, text string, opts Options) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}
	if text == "" {
		return ErrEmptyText
	}
	if opts.Voice == "" {
		return ErrVoiceRequired
	}
	return nil
}
