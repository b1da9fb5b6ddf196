// Package config provides configuration loading from environment variables
// and voice preset files.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidConfig is returned when a variable holds an unsupported value.
	ErrInvalidConfig = errors.New("config: invalid configuration")
	// ErrSpeechAPIURLRequired is returned when TTS_ENGINE=http without SPEECH_API_URL.
	ErrSpeechAPIURLRequired = errors.New("config: SPEECH_API_URL is required for the http engine")
)

var validate = validator.New()

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port        int      `env:"PORT, default=8080" json:"port" validate:"min=1,max=65535"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=*" json:"cors_origins"`

	// Presets
	PresetDir string `env:"PRESET_DIR" json:"preset_dir,omitempty"`

	// Speech synthesis settings
	TTSEngine            string  `env:"TTS_ENGINE, default=piper" json:"tts_engine" validate:"oneof=piper espeak http"`
	PiperPath            string  `env:"PIPER_PATH, default=piper" json:"piper_path"`
	PiperModelDir        string  `env:"PIPER_MODEL_DIR" json:"piper_model_dir,omitempty"`
	EspeakPath           string  `env:"ESPEAK_PATH, default=espeak-ng" json:"espeak_path"`
	SpeechAPIURL         string  `env:"SPEECH_API_URL" json:"speech_api_url,omitempty"`
	SpeechAPIKey         string  `env:"SPEECH_API_KEY" json:"-"` // Masked in JSON
	SpeechAPIModel       string  `env:"SPEECH_API_MODEL, default=tts-1" json:"speech_api_model"`
	SpeechRequestsPerSec float64 `env:"SPEECH_REQUESTS_PER_SEC, default=2" json:"speech_requests_per_sec" validate:"gt=0"`

	// Processing settings
	MaxConcurrentChunks int `env:"MAX_CONCURRENT_CHUNKS, default=2" json:"max_concurrent_chunks" validate:"min=1"`

	// Audio settings
	Stitcher          string  `env:"STITCHER, default=wav" json:"stitcher" validate:"oneof=wav ffmpeg"`
	FFmpegPath        string  `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	NormalizeLoudness bool    `env:"NORMALIZE_LOUDNESS, default=false" json:"normalize_loudness"`
	TargetLUFS        float64 `env:"TARGET_LUFS, default=-16" json:"target_lufs" validate:"lt=0"`
	LoudnessRange     float64 `env:"LOUDNESS_RANGE, default=7" json:"loudness_range" validate:"gt=0"`

	// Optional publishing settings
	PublishDir         string `env:"PUBLISH_DIR" json:"publish_dir,omitempty"`
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// PublishEnabled returns true if the book artifact should be published.
func (c *Config) PublishEnabled() bool {
	return c.S3Enabled() || c.PublishDir != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and engine-specific requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.TTSEngine == "http" && c.SpeechAPIURL == "" {
		return ErrSpeechAPIURLRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, TTSEngine: %s, SpeechAPIURL: %s, Stitcher: %s, MaxConcurrentChunks: %d, NormalizeLoudness: %t, PublishDir: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.TTSEngine,
		c.SpeechAPIURL,
		c.Stitcher,
		c.MaxConcurrentChunks,
		c.NormalizeLoudness,
		c.PublishDir,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
