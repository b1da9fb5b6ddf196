// Package audio joins chunk WAV files into chapter and book artifacts and
// normalizes their loudness.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Static errors for audio operations.
var (
	// ErrNoInputs is returned when Stitch is called with an empty input list.
	ErrNoInputs = errors.New("audio: no input files")
	// ErrFormatMismatch is returned when inputs differ in sample rate or channels.
	ErrFormatMismatch = errors.New("audio: input format mismatch")
	// ErrInvalidWAV is returned when an input is not a readable PCM WAV file.
	ErrInvalidWAV = errors.New("audio: invalid WAV file")
)

// StitchOpts configures how inputs are joined.
type StitchOpts struct {
	// Gap is the silence inserted between consecutive inputs.
	Gap time.Duration
}

// Stitcher joins audio files, in order, into one output file.
type Stitcher interface {
	// Stitch writes the concatenation of inputs to output, replacing it.
	// A single input is copied through unchanged. An empty list fails with
	// ErrNoInputs.
	Stitch(ctx context.Context, inputs []string, output string, opts StitchOpts) error
}

// NormalizeOpts configures loudness normalization.
type NormalizeOpts struct {
	// TargetLUFS is the integrated loudness target, e.g. -16 for audiobooks.
	TargetLUFS float64
	// LoudnessRange is the target loudness range in LU.
	LoudnessRange float64
}

// Normalizer rewrites an audio file to a loudness target.
type Normalizer interface {
	Normalize(ctx context.Context, input, output string, opts NormalizeOpts) error
}

// copyFile copies src to dst through a temp file so dst is never partial.
func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 - src is provided by trusted internal code
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp := dst + ".part"
	out, err := os.Create(tmp) // #nosec G304 - dst is provided by trusted internal code
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close destination file: %w", err)
	}
	return os.Rename(tmp, dst)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
		return nil
	}
}
