// Package bootstrap provides dependency initialization for the video
// generation API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/promptmotion/videogen-api/internal/artifact"
	"github.com/promptmotion/videogen-api/internal/config"
	"github.com/promptmotion/videogen-api/internal/generator"
	"github.com/promptmotion/videogen-api/internal/job"
	"github.com/promptmotion/videogen-api/internal/media"
	"github.com/promptmotion/videogen-api/internal/minimax"
	"github.com/promptmotion/videogen-api/internal/replicate"
	"github.com/promptmotion/videogen-api/internal/storage"
)

// runnerWorkers is the size of the background generation pool.
const runnerWorkers = 2

// runnerQueueSize caps the number of jobs waiting for a worker.
const runnerQueueSize = 64

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	JobService *job.Service
	Runner     *job.Runner
	Artifacts  artifact.Repository
}

// NewDependencies creates and initializes all dependencies for the
// application. Providers are constructed only when their credentials are
// configured; the local fallback generator is always present, so the
// pipeline can complete jobs with zero providers configured.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	width, height, err := cfg.ResolutionSize()
	if err != nil {
		return nil, err
	}

	ffmpeg := media.NewFFmpeg("")

	generators, err := initGenerators(cfg, store, ffmpeg)
	if err != nil {
		return nil, err
	}
	pipeline := generator.NewPipeline(logger, generators...)
	logger.Info("generation providers configured",
		slog.Any("providers", pipeline.Providers()),
	)

	jobs := job.NewMemoryRepository()
	artifacts := artifact.NewMemoryRepository()

	svc := job.NewService(jobs, artifacts, pipeline, store, ffmpeg, logger, job.ServiceOptions{
		DefaultDurationSec: cfg.DefaultVideoDuration,
		MaxDurationSec:     cfg.MaxVideoDuration,
		Width:              width,
		Height:             height,
		FPS:                cfg.VideoFPS,
		UploadToS3:         cfg.S3Enabled(),
	})

	runner := job.NewRunner(svc, logger, runnerWorkers, runnerQueueSize)

	return &Dependencies{
		JobService: svc,
		Runner:     runner,
		Artifacts:  artifacts,
	}, nil
}

// initGenerators builds the provider chain in priority order:
// minimax, then replicate, then the local fallback.
func initGenerators(cfg *config.Config, store storage.Storage, ffmpeg *media.FFmpeg) ([]generator.Generator, error) {
	var generators []generator.Generator

	if cfg.MinimaxEnabled() {
		client, err := minimax.NewClient(
			minimax.WithAPIKey(cfg.MinimaxAPIKey),
			minimax.WithBaseURL(cfg.MinimaxBaseURL),
			minimax.WithModel(cfg.MinimaxModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create Minimax client: %w", err)
		}
		generators = append(generators, generator.NewMinimaxGenerator(
			client, store, cfg.MinimaxResolution, cfg.MinimaxPollInterval, cfg.MinimaxMaxWait,
		))
	}

	if cfg.ReplicateEnabled() {
		client, err := replicate.NewClient(
			replicate.WithToken(cfg.ReplicateAPIToken),
			replicate.WithBaseURL(cfg.ReplicateBaseURL),
			replicate.WithModel(cfg.ReplicateModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create Replicate client: %w", err)
		}
		generators = append(generators, generator.NewReplicateGenerator(client, store))
	}

	generators = append(generators, generator.NewFallbackGenerator(ffmpeg, store))
	return generators, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, cfg.OutputDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir, cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
		slog.String("output_dir", cfg.OutputDir),
	)
	return localStore, nil
}
