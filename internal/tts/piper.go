package tts

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// PiperSynthesizer drives the piper CLI, feeding text on stdin.
type PiperSynthesizer struct {
	exePath  string
	modelDir string
	logger   *slog.Logger
}

var _ Synthesizer = (*PiperSynthesizer)(nil)

// NewPiperSynthesizer creates a piper-backed Synthesizer. Voices are resolved
// to <modelDir>/<voice>.onnx unless they already name an .onnx file.
func NewPiperSynthesizer(exePath, modelDir string, logger *slog.Logger) *PiperSynthesizer {
	if exePath == "" {
		exePath = "piper"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PiperSynthesizer{exePath: exePath, modelDir: modelDir, logger: logger}
}

// Synthesize implements Synthesizer.
func (p *PiperSynthesizer) Synthesize(ctx context.Context, text string, opts Options, outPath string) error {
	if err := checkInput(ctx, text, opts); err != nil {
		return err
	}

	return writeAtomic(outPath, func(tmpPath string) error {
		args := []string{
			"--model", p.modelPath(opts.Voice),
			"--output_file", tmpPath,
			"--length_scale", strconv.FormatFloat(lengthScale(opts.Rate), 'f', 4, 64),
		}

		// #nosec G204 - executable and model come from operator configuration
		cmd := exec.CommandContext(ctx, p.exePath, args...)
		cmd.Stdin = strings.NewReader(text)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		p.logger.Debug("running piper", slog.String("output", outPath))
		if err := cmd.Run(); err != nil {
			return &EngineError{Engine: "piper", Stderr: strings.TrimSpace(stderr.String()), Err: err}
		}
		return nil
	})
}

func (p *PiperSynthesizer) modelPath(voice string) string {
	if strings.HasSuffix(voice, ".onnx") || p.modelDir == "" {
		return voice
	}
	return filepath.Join(p.modelDir, voice+".onnx")
}

// lengthScale maps a speaking rate to piper's length scale, where smaller
// is faster. Rates below 0.1 are clamped.
func lengthScale(rate float64) float64 {
	if rate == 0 {
		rate = 1
	}
	return 1 / max(rate, 0.1)
}
