package tts

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

const (
	espeakBaseWPM   = 175
	espeakBasePitch = 50
)

// EspeakSynthesizer drives the espeak-ng CLI. It needs no model files and
// is the fallback engine for machines without piper.
type EspeakSynthesizer struct {
	exePath string
	logger  *slog.Logger
}

var _ Synthesizer = (*EspeakSynthesizer)(nil)

// NewEspeakSynthesizer creates an espeak-ng backed Synthesizer.
func NewEspeakSynthesizer(exePath string, logger *slog.Logger) *EspeakSynthesizer {
	if exePath == "" {
		exePath = "espeak-ng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EspeakSynthesizer{exePath: exePath, logger: logger}
}

// Synthesize implements Synthesizer.
func (e *EspeakSynthesizer) Synthesize(ctx context.Context, text string, opts Options, outPath string) error {
	if err := checkInput(ctx, text, opts); err != nil {
		return err
	}

	return writeAtomic(outPath, func(tmpPath string) error {
		args := []string{
			"-w", tmpPath,
			"-v", opts.Voice,
			"-s", strconv.Itoa(espeakSpeed(opts.Rate)),
			"-p", strconv.Itoa(espeakPitch(opts.Pitch)),
			"--stdin",
		}

		// #nosec G204 - executable comes from operator configuration
		cmd := exec.CommandContext(ctx, e.exePath, args...)
		cmd.Stdin = strings.NewReader(text)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		e.logger.Debug("running espeak-ng", slog.String("output", outPath))
		if err := cmd.Run(); err != nil {
			return &EngineError{Engine: "espeak-ng", Stderr: strings.TrimSpace(stderr.String()), Err: err}
		}
		return nil
	})
}

func espeakSpeed(rate float64) int {
	if rate <= 0 {
		rate = 1
	}
	return int(espeakBaseWPM * rate)
}

// espeakPitch maps [-1, 1] onto espeak's 0-99 pitch scale.
func espeakPitch(pitch float64) int {
	p := int(espeakBasePitch + pitch*espeakBasePitch)
	return min(max(p, 0), 99)
}
