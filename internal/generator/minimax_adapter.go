package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/promptmotion/videogen-api/internal/minimax"
	"github.com/promptmotion/videogen-api/internal/poll"
	"github.com/promptmotion/videogen-api/internal/storage"
)

// MinimaxGenerator produces clips through the Minimax video API.
// Submissions that don't complete inline are polled until the remote task
// reaches a terminal state or the wait budget runs out.
type MinimaxGenerator struct {
	client       minimax.Client
	store        storage.Storage
	resolution   string
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewMinimaxGenerator creates a Minimax-backed generator.
func NewMinimaxGenerator(client minimax.Client, store storage.Storage, resolution string, pollInterval, maxWait time.Duration) *MinimaxGenerator {
	return &MinimaxGenerator{
		client:       client,
		store:        store,
		resolution:   resolution,
		pollInterval: pollInterval,
		maxWait:      maxWait,
	}
}

// Name returns the provider identifier.
func (g *MinimaxGenerator) Name() string { return "minimax" }

// Generate submits the prompt, waits for the remote task if needed, and
// downloads the finished video into a scratch file.
func (g *MinimaxGenerator) Generate(ctx context.Context, prompt string, opts Options) (Result, error) {
	submit, err := g.client.Submit(ctx, prompt, opts.DurationSec, g.resolution)
	if err != nil {
		return Result{}, fmt.Errorf("minimax submit: %w", err)
	}

	videoURL := submit.VideoURL
	if videoURL == "" {
		videoURL, err = poll.Wait(ctx, g.client.Task(submit.TaskID), g.pollInterval, g.maxWait)
		if err != nil {
			return Result{}, fmt.Errorf("minimax task %s: %w", submit.TaskID, err)
		}
	}

	path, err := g.store.TempFile("minimax")
	if err != nil {
		return Result{}, fmt.Errorf("minimax scratch file: %w", err)
	}

	if err := g.client.Download(ctx, videoURL, path); err != nil {
		_ = g.store.CleanupTemp(ctx, []string{path})
		return Result{}, fmt.Errorf("minimax download: %w", err)
	}

	return Result{
		VideoPath:   path,
		Provider:    g.Name(),
		DurationSec: opts.DurationSec,
		Width:       opts.Width,
		Height:      opts.Height,
		FPS:         opts.FPS,
	}, nil
}
