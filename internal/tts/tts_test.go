package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine writes an executable shell script that records its arguments
// and copies stdin to the file named after outFlag.
func fakeEngine(t *testing.T, outFlag string, fail bool) (exe, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engines are not supported on windows")
	}

	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	body := `#!/bin/sh
echo "$@" > "` + argsFile + `"
`
	if fail {
		body += "echo 'voice model missing' >&2\nexit 3\n"
	} else {
		body += `while [ $# -gt 0 ]; do
  if [ "$1" = "` + outFlag + `" ]; then out="$2"; fi
  shift
done
cat > "$out"
`
	}

	exe = filepath.Join(dir, "engine.sh")
	require.NoError(t, os.WriteFile(exe, []byte(body), 0700)) // #nosec G306 - test script must be executable
	return exe, argsFile
}

func TestPiperSynthesizer(t *testing.T) {
	exe, argsFile := fakeEngine(t, "--output_file", false)
	out := filepath.Join(t.TempDir(), "chunks", "chunk_00001.wav")

	p := NewPiperSynthesizer(exe, "/models", nil)
	err := p.Synthesize(context.Background(), "Hello there.", Options{Voice: "en_GB-alan-low", Rate: 0.5}, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", string(data))
	assert.NoFileExists(t, out+".part")

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "--model /models/en_GB-alan-low.onnx")
	assert.Contains(t, string(args), "--length_scale 2.0000")
}

func TestPiperSynthesizer_Overwrites(t *testing.T) {
	exe, _ := fakeEngine(t, "--output_file", false)
	out := filepath.Join(t.TempDir(), "chunk.wav")
	require.NoError(t, os.WriteFile(out, []byte("old audio"), 0600))

	p := NewPiperSynthesizer(exe, "", nil)
	require.NoError(t, p.Synthesize(context.Background(), "new", Options{Voice: "v.onnx"}, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestPiperSynthesizer_Failure(t *testing.T) {
	exe, _ := fakeEngine(t, "--output_file", true)
	out := filepath.Join(t.TempDir(), "chunk.wav")

	p := NewPiperSynthesizer(exe, "", nil)
	err := p.Synthesize(context.Background(), "text", Options{Voice: "v"}, out)
	require.Error(t, err)

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "piper", engErr.Engine)
	assert.Contains(t, engErr.Stderr, "voice model missing")
	assert.NoFileExists(t, out)
	assert.NoFileExists(t, out+".part")
}

func TestEspeakSynthesizer(t *testing.T) {
	exe, argsFile := fakeEngine(t, "-w", false)
	out := filepath.Join(t.TempDir(), "chunk.wav")

	e := NewEspeakSynthesizer(exe, nil)
	require.NoError(t, e.Synthesize(context.Background(), "Speak.", Options{Voice: "en-us", Rate: 1.2, Pitch: -0.2}, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Speak.", string(data))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-v en-us -s 210 -p 40 --stdin")
}

func TestInputValidation(t *testing.T) {
	p := NewPiperSynthesizer("piper", "", nil)
	out := filepath.Join(t.TempDir(), "x.wav")

	assert.ErrorIs(t, p.Synthesize(context.Background(), "", Options{Voice: "v"}, out), ErrEmptyText)
	assert.ErrorIs(t, p.Synthesize(context.Background(), "text", Options{}, out), ErrVoiceRequired)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Synthesize(ctx, "text", Options{Voice: "v"}, out), context.Canceled)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, 1.0, lengthScale(0))
	assert.Equal(t, 10.0, lengthScale(0.01))
	assert.Equal(t, 0.5, lengthScale(2))
	assert.Equal(t, 0, espeakPitch(-3))
	assert.Equal(t, 99, espeakPitch(1))
	assert.Equal(t, 175, espeakSpeed(0))
}

func newTestSynth(t *testing.T, url string, opts ...HTTPOption) *HTTPSynthesizer {
	t.Helper()
	base := []HTTPOption{
		WithAPIKey("test-key"),
		WithBaseBackoff(time.Millisecond),
		WithRequestsPerSecond(0),
	}
	s, err := NewHTTPSynthesizer(url, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func TestNewHTTPSynthesizer_MissingURL(t *testing.T) {
	_, err := NewHTTPSynthesizer("")
	assert.ErrorIs(t, err, ErrBaseURLRequired)
}

func TestHTTPSynthesizer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "narrator-2", req.Model)
		assert.Equal(t, "Read this.", req.Input)
		assert.Equal(t, "alloy", req.Voice)
		assert.Equal(t, "wav", req.ResponseFormat)

		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF-audio"))
	}))
	defer server.Close()

	s := newTestSynth(t, server.URL+"/v1/", WithModel("narrator-2"))
	out := filepath.Join(t.TempDir(), "chunk.wav")

	require.NoError(t, s.Synthesize(context.Background(), "Read this.", Options{Voice: "alloy", Rate: 1}, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "RIFF-audio", string(data))
}

func TestHTTPSynthesizer_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte("audio"))
		}
	}))
	defer server.Close()

	s := newTestSynth(t, server.URL)
	out := filepath.Join(t.TempDir(), "chunk.wav")

	require.NoError(t, s.Synthesize(context.Background(), "text", Options{Voice: "v"}, out))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPSynthesizer_MaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := newTestSynth(t, server.URL, WithMaxRetries(2))
	out := filepath.Join(t.TempDir(), "chunk.wav")

	err := s.Synthesize(context.Background(), "text", Options{Voice: "v"}, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
	assert.Equal(t, int32(3), calls.Load())
	assert.NoFileExists(t, out)
}

func TestHTTPSynthesizer_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown voice"}`))
	}))
	defer server.Close()

	s := newTestSynth(t, server.URL)
	err := s.Synthesize(context.Background(), "text", Options{Voice: "v"}, filepath.Join(t.TempDir(), "c.wav"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.True(t, strings.Contains(err.Error(), "unknown voice"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSynthesizer_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := newTestSynth(t, server.URL)
	err := s.Synthesize(context.Background(), "text", Options{Voice: "v"}, filepath.Join(t.TempDir(), "c.wav"))
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestHTTPSynthesizer_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newTestSynth(t, server.URL, WithBaseBackoff(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Synthesize(ctx, "text", Options{Voice: "v"}, filepath.Join(t.TempDir(), "c.wav"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
