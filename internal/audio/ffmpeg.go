package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrLoudnessAnalysis is returned when the loudnorm measurement pass
// produces no parsable result.
var ErrLoudnessAnalysis = errors.New("audio: loudness analysis failed")

// FFmpegStitcher joins audio files with the ffmpeg CLI. Unlike WAVStitcher it
// accepts inputs of differing formats.
type FFmpegStitcher struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

var _ Stitcher = (*FFmpegStitcher)(nil)

// NewFFmpegStitcher creates a new FFmpegStitcher.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegStitcher(ffmpegPath string) *FFmpegStitcher {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegStitcher{ffmpegPath: ffmpegPath}
}

// Stitch implements Stitcher. Without a gap it first tries a stream copy
// through the concat demuxer and falls back to re-encoding as PCM. With a
// gap every input but the last is padded with silence by the apad filter.
func (s *FFmpegStitcher) Stitch(ctx context.Context, inputs []string, output string, opts StitchOpts) error {
	if len(inputs) == 0 {
		return ErrNoInputs
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	if len(inputs) == 1 {
		return copyFile(inputs[0], output)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp := partPath(output)
	if err := s.join(ctx, inputs, tmp, opts); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, output)
}

func (s *FFmpegStitcher) join(ctx context.Context, inputs []string, output string, opts StitchOpts) error {
	if opts.Gap > 0 {
		return s.joinWithGaps(ctx, inputs, output, opts.Gap.Seconds())
	}

	listFile, err := createConcatList(inputs)
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	defer func() { _ = os.Remove(listFile) }()

	if err := s.joinWithCopy(ctx, listFile, output); err == nil {
		return nil
	}
	return s.joinWithReencode(ctx, listFile, output)
}

// joinWithCopy concatenates using stream copy (no re-encoding).
func (s *FFmpegStitcher) joinWithCopy(ctx context.Context, listFile, output string) error {
	args := []string{
		"-y",           // Overwrite output file
		"-f", "concat", // Use concat demuxer
		"-safe", "0", // Allow absolute paths
		"-i", listFile, // Input file list
		"-c", "copy", // Copy streams without re-encoding
		output,
	}
	return runFFmpeg(ctx, s.ffmpegPath, args)
}

// joinWithReencode concatenates by decoding and re-encoding as 16-bit PCM.
func (s *FFmpegStitcher) joinWithReencode(ctx context.Context, listFile, output string) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c:a", "pcm_s16le",
		output,
	}
	return runFFmpeg(ctx, s.ffmpegPath, args)
}

func (s *FFmpegStitcher) joinWithGaps(ctx context.Context, inputs []string, output string, gapSec float64) error {
	args := []string{"-y"}
	for _, in := range inputs {
		args = append(args, "-i", in)
	}

	var filter strings.Builder
	for i := range inputs {
		if i < len(inputs)-1 {
			fmt.Fprintf(&filter, "[%d:a]apad=pad_dur=%.3f[a%d];", i, gapSec, i)
		}
	}
	for i := range inputs {
		if i < len(inputs)-1 {
			fmt.Fprintf(&filter, "[a%d]", i)
		} else {
			fmt.Fprintf(&filter, "[%d:a]", i)
		}
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[out]", len(inputs))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[out]",
		"-c:a", "pcm_s16le",
		output,
	)
	return runFFmpeg(ctx, s.ffmpegPath, args)
}

// createConcatList creates a temporary file containing the list of input files
// in the format required by ffmpeg's concat demuxer.
func createConcatList(paths []string) (string, error) {
	f, err := os.CreateTemp("", "ffmpeg-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("get absolute path for %s: %w", path, err)
		}
		// Escape single quotes in path
		escapedPath := strings.ReplaceAll(absPath, "'", "'\\''")
		if _, err := fmt.Fprintf(f, "file '%s'\n", escapedPath); err != nil {
			return "", fmt.Errorf("write to concat list: %w", err)
		}
	}

	return f.Name(), nil
}

// FFmpegNormalizer applies two-pass EBU R128 loudness normalization: the
// first pass measures the input, the second applies a linear correction
// using those measurements.
type FFmpegNormalizer struct {
	ffmpegPath string
	sampleRate int
}

var _ Normalizer = (*FFmpegNormalizer)(nil)

// NewFFmpegNormalizer creates a normalizer. Output is resampled to
// sampleRate (22050 Hz when zero), since loudnorm upsamples internally.
func NewFFmpegNormalizer(ffmpegPath string, sampleRate int) *FFmpegNormalizer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if sampleRate <= 0 {
		sampleRate = 22050
	}
	return &FFmpegNormalizer{ffmpegPath: ffmpegPath, sampleRate: sampleRate}
}

// loudnessStats is the JSON block loudnorm prints with print_format=json.
type loudnessStats struct {
	InputI       string `json:"input_i"`
	InputTP      string `json:"input_tp"`
	InputLRA     string `json:"input_lra"`
	InputThresh  string `json:"input_thresh"`
	TargetOffset string `json:"target_offset"`
}

// Normalize implements Normalizer. input and output may be the same path.
func (n *FFmpegNormalizer) Normalize(ctx context.Context, input, output string, opts NormalizeOpts) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("normalize input: %w", err)
	}

	stats, err := n.measure(ctx, input, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp := partPath(output)
	filter := fmt.Sprintf(
		"loudnorm=I=%s:LRA=%s:measured_I=%s:measured_LRA=%s:measured_TP=%s:measured_thresh=%s:offset=%s:linear=true:print_format=summary",
		formatFloat(opts.TargetLUFS), formatFloat(opts.LoudnessRange),
		stats.InputI, stats.InputLRA, stats.InputTP, stats.InputThresh, stats.TargetOffset,
	)
	args := []string{
		"-y",
		"-i", input,
		"-af", filter,
		"-ar", strconv.Itoa(n.sampleRate),
		tmp,
	}
	if err := runFFmpeg(ctx, n.ffmpegPath, args); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, output)
}

func (n *FFmpegNormalizer) measure(ctx context.Context, input string, opts NormalizeOpts) (loudnessStats, error) {
	filter := fmt.Sprintf("loudnorm=I=%s:LRA=%s:print_format=json",
		formatFloat(opts.TargetLUFS), formatFloat(opts.LoudnessRange))
	args := []string{
		"-hide_banner",
		"-i", input,
		"-af", filter,
		"-f", "null", "-",
	}

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, n.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return loudnessStats{}, fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return loudnessStats{}, &FFmpegError{Args: args, Stderr: stderr.String(), Err: err}
	}

	return parseLoudnessStats(stderr.String())
}

// parseLoudnessStats extracts the last JSON object from ffmpeg's stderr.
func parseLoudnessStats(output string) (loudnessStats, error) {
	start := strings.LastIndex(output, "{")
	end := strings.LastIndex(output, "}")
	if start < 0 || end < start {
		return loudnessStats{}, fmt.Errorf("%w: no JSON block in output", ErrLoudnessAnalysis)
	}

	var stats loudnessStats
	if err := json.Unmarshal([]byte(output[start:end+1]), &stats); err != nil {
		return loudnessStats{}, fmt.Errorf("%w: %v", ErrLoudnessAnalysis, err)
	}
	if stats.InputI == "" || stats.TargetOffset == "" {
		return loudnessStats{}, fmt.Errorf("%w: incomplete measurements", ErrLoudnessAnalysis)
	}
	return stats, nil
}

// partPath keeps the extension so ffmpeg can infer the output format.
func partPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + ".part" + ext
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func runFFmpeg(ctx context.Context, ffmpegPath string, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
