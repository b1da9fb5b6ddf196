package audio

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// audiobookLoudness is the usual spoken-word target.
var audiobookLoudness = NormalizeOpts{TargetLUFS: -16, LoudnessRange: 7}

// checkFFmpeg skips test if ffmpeg is not available.
func checkFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH, skipping test")
	}
}

// writeSquare writes a mono square wave so loudness can be measured.
func writeSquare(t *testing.T, path string, sampleRate, frames, amplitude int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	data := make([]int, frames)
	for i := range data {
		if (i/20)%2 == 0 {
			data[i] = amplitude
		} else {
			data[i] = -amplitude
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
}

func TestNewFFmpegStitcher_DefaultPath(t *testing.T) {
	s := NewFFmpegStitcher("")
	assert.Equal(t, "ffmpeg", s.ffmpegPath)
}

func TestNewFFmpegNormalizer_Defaults(t *testing.T) {
	n := NewFFmpegNormalizer("/opt/ffmpeg", 0)
	assert.Equal(t, "/opt/ffmpeg", n.ffmpegPath)
	assert.Equal(t, 22050, n.sampleRate)
}

func TestFFmpegStitcher_NoInputs(t *testing.T) {
	err := NewFFmpegStitcher("").Stitch(context.Background(), nil, "out.wav", StitchOpts{})
	assert.ErrorIs(t, err, ErrNoInputs)
}

func TestFFmpegStitcher_Concat(t *testing.T) {
	checkFFmpeg(t)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b it's.wav")
	writeTone(t, a, 16000, 1, 16000, 1000)
	writeTone(t, b, 16000, 1, 8000, 1000)

	out := filepath.Join(dir, "out.wav")
	require.NoError(t, NewFFmpegStitcher("").Stitch(context.Background(), []string{a, b}, out, StitchOpts{}))

	d, err := wavDuration(out)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, d.Seconds(), 0.05)
}

func TestFFmpegStitcher_Gaps(t *testing.T) {
	checkFFmpeg(t)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b.wav")
	writeTone(t, a, 16000, 1, 8000, 1000)
	writeTone(t, b, 16000, 1, 8000, 1000)

	out := filepath.Join(dir, "out.wav")
	require.NoError(t, NewFFmpegStitcher("").Stitch(context.Background(), []string{a, b}, out, StitchOpts{Gap: time.Second}))

	d, err := wavDuration(out)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d.Seconds(), 0.05)
}

func TestFFmpegStitcher_MissingInput(t *testing.T) {
	checkFFmpeg(t)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	writeTone(t, a, 16000, 1, 1600, 1)

	out := filepath.Join(dir, "out.wav")
	err := NewFFmpegStitcher("").Stitch(context.Background(), []string{a, filepath.Join(dir, "missing.wav")}, out, StitchOpts{Gap: time.Second})
	require.Error(t, err)

	var ffErr *FFmpegError
	assert.ErrorAs(t, err, &ffErr)
	assert.NoFileExists(t, out)
}

func TestFFmpegNormalizer_Normalize(t *testing.T) {
	checkFFmpeg(t)

	dir := t.TempDir()
	in := filepath.Join(dir, "quiet.wav")
	writeSquare(t, in, 22050, 22050*3, 800)

	out := filepath.Join(dir, "loud.wav")
	require.NoError(t, NewFFmpegNormalizer("", 0).Normalize(context.Background(), in, out, audiobookLoudness))

	d, err := wavDuration(out)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, d.Seconds(), 0.1)
	assert.NoFileExists(t, partPath(out))
}

func TestFFmpegNormalizer_MissingInput(t *testing.T) {
	err := NewFFmpegNormalizer("", 0).Normalize(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), "out.wav", audiobookLoudness)
	assert.Error(t, err)
}

func TestParseLoudnessStats(t *testing.T) {
	output := `[Parsed_loudnorm_0 @ 0x1]
{
	"input_i" : "-27.61",
	"input_tp" : "-4.47",
	"input_lra" : "18.06",
	"input_thresh" : "-39.20",
	"output_i" : "-16.58",
	"target_offset" : "0.58"
}`

	stats, err := parseLoudnessStats(output)
	require.NoError(t, err)
	assert.Equal(t, "-27.61", stats.InputI)
	assert.Equal(t, "-4.47", stats.InputTP)
	assert.Equal(t, "18.06", stats.InputLRA)
	assert.Equal(t, "-39.20", stats.InputThresh)
	assert.Equal(t, "0.58", stats.TargetOffset)

	_, err = parseLoudnessStats("no json here")
	assert.ErrorIs(t, err, ErrLoudnessAnalysis)

	_, err = parseLoudnessStats(`{"input_i": "-20"}`)
	assert.ErrorIs(t, err, ErrLoudnessAnalysis)
}

func TestPartPath(t *testing.T) {
	assert.Equal(t, "/x/book.part.wav", partPath("/x/book.wav"))
	assert.Equal(t, "/x/book.part", partPath("/x/book"))
}

func TestFFmpegError(t *testing.T) {
	inner := exec.ErrNotFound
	err := &FFmpegError{Args: []string{"-i", "x"}, Stderr: "boom", Err: inner}
	assert.Contains(t, err.Error(), "boom")
	assert.ErrorIs(t, err, exec.ErrNotFound)
}
