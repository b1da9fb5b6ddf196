package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Static errors for the speech API client.
var (
	// ErrBaseURLRequired is returned when no API base URL is provided.
	ErrBaseURLRequired = errors.New("tts: speech API base URL is required")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("tts: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("tts: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("tts: request failed")
	// ErrEmptyAudio is returned when the server answers with an empty body.
	ErrEmptyAudio = errors.New("tts: empty audio response")
)

// HTTPSynthesizer calls an OpenAI-compatible POST /audio/speech endpoint
// and stores the returned WAV body.
type HTTPSynthesizer struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	logger      *slog.Logger
}

var _ Synthesizer = (*HTTPSynthesizer)(nil)

// HTTPOption is a function that configures an HTTPSynthesizer.
type HTTPOption func(*HTTPSynthesizer)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) HTTPOption {
	return func(s *HTTPSynthesizer) {
		s.apiKey = key
	}
}

// WithModel sets the model name sent in the request body.
func WithModel(model string) HTTPOption {
	return func(s *HTTPSynthesizer) {
		s.model = model
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSynthesizer) {
		s.httpClient = c
	}
}

// WithRequestsPerSecond limits outgoing requests. Zero or less disables the limit.
func WithRequestsPerSecond(rps float64) HTTPOption {
	return func(s *HTTPSynthesizer) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) HTTPOption {
	return func(s *HTTPSynthesizer) {
		s.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) HTTPOption {
	return func(s *HTTPSynthesizer) {
		s.baseBackoff = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(s *HTTPSynthesizer) {
		s.logger = l
	}
}

// NewHTTPSynthesizer creates a client for the speech API at baseURL.
func NewHTTPSynthesizer(baseURL string, opts ...HTTPOption) (*HTTPSynthesizer, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	s := &HTTPSynthesizer{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       "tts-1",
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(2), 1),
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	ResponseFormat string  `json:"response_format"`
	Seed           int     `json:"seed,omitempty"`
}

// Synthesize implements Synthesizer.
func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text string, opts Options, outPath string) error {
	if err := checkInput(ctx, text, opts); err != nil {
		return err
	}

	body, err := json.Marshal(speechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          opts.Voice,
		Speed:          opts.Rate,
		ResponseFormat: "wav",
		Seed:           opts.Seed,
	})
	if err != nil {
		return fmt.Errorf("tts: marshal request: %w", err)
	}

	audio, err := s.doRequestWithRetry(ctx, s.baseURL+"/audio/speech", body)
	if err != nil {
		return err
	}
	if len(audio) == 0 {
		return ErrEmptyAudio
	}

	return writeAtomic(outPath, func(tmpPath string) error {
		if err := os.WriteFile(tmpPath, audio, 0600); err != nil {
			return fmt.Errorf("tts: write audio: %w", err)
		}
		return nil
	})
}

// doRequestWithRetry performs the request with exponential backoff retry.
func (s *HTTPSynthesizer) doRequestWithRetry(ctx context.Context, url string, body []byte) ([]byte, error) {
	var lastErr error
	backoff := s.baseBackoff

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Debug("retrying speech request",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("tts: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("tts: rate limiter: %w", err)
		}

		data, err := s.doRequest(ctx, url, body)
		if err == nil {
			return data, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("tts: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
func (s *HTTPSynthesizer) doRequest(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("tts: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("tts: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return nil, &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return nil, fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
