// Package bootstrap builds the application's collaborators from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/bookforge/internal/audio"
	"github.com/maauso/bookforge/internal/book"
	"github.com/maauso/bookforge/internal/config"
	"github.com/maauso/bookforge/internal/storage"
	"github.com/maauso/bookforge/internal/tts"
)

// Dependencies holds the initialized services shared by every command.
type Dependencies struct {
	Book *book.Service
}

// NewDependencies creates the book service with the configured speech
// engine, stitcher, normalizer and publisher.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	synth, err := initSynthesizer(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []book.Option{
		book.WithLogger(logger),
		book.WithPresetDir(cfg.PresetDir),
		book.WithConcurrency(cfg.MaxConcurrentChunks),
	}

	if cfg.NormalizeLoudness {
		opts = append(opts, book.WithNormalizer(
			audio.NewFFmpegNormalizer(cfg.FFmpegPath, 0),
			audio.NormalizeOpts{TargetLUFS: cfg.TargetLUFS, LoudnessRange: cfg.LoudnessRange},
		))
		logger.Info("loudness normalization enabled", slog.Float64("target_lufs", cfg.TargetLUFS))
	}

	publisher, err := initPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if publisher != nil {
		opts = append(opts, book.WithPublisher(publisher))
	}

	return &Dependencies{
		Book: book.NewService(synth, initStitcher(cfg), opts...),
	}, nil
}

func initSynthesizer(cfg *config.Config, logger *slog.Logger) (tts.Synthesizer, error) {
	switch cfg.TTSEngine {
	case "espeak":
		return tts.NewEspeakSynthesizer(cfg.EspeakPath, logger), nil
	case "http":
		s, err := tts.NewHTTPSynthesizer(cfg.SpeechAPIURL,
			tts.WithAPIKey(cfg.SpeechAPIKey),
			tts.WithModel(cfg.SpeechAPIModel),
			tts.WithRequestsPerSecond(cfg.SpeechRequestsPerSec),
			tts.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create speech API client: %w", err)
		}
		return s, nil
	default:
		return tts.NewPiperSynthesizer(cfg.PiperPath, cfg.PiperModelDir, logger), nil
	}
}

func initStitcher(cfg *config.Config) audio.Stitcher {
	if cfg.Stitcher == "ffmpeg" {
		return audio.NewFFmpegStitcher(cfg.FFmpegPath)
	}
	return audio.NewWAVStitcher()
}

// initPublisher returns nil when publishing is not configured.
func initPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Store, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 publishing configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	if cfg.PublishDir != "" {
		localStore, err := storage.NewLocalStorage(cfg.PublishDir)
		if err != nil {
			return nil, fmt.Errorf("create local storage: %w", err)
		}
		logger.Info("local publishing configured", slog.String("dir", cfg.PublishDir))
		return localStore, nil
	}

	return nil, nil
}
