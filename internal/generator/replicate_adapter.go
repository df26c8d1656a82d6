package generator

import (
	"context"
	"fmt"

	"github.com/promptmotion/videogen-api/internal/replicate"
	"github.com/promptmotion/videogen-api/internal/storage"
)

// ReplicateGenerator produces clips through Replicate's blocking prediction
// API. The whole generation happens inside a single HTTP call.
type ReplicateGenerator struct {
	client replicate.Client
	store  storage.Storage
}

// NewReplicateGenerator creates a Replicate-backed generator.
func NewReplicateGenerator(client replicate.Client, store storage.Storage) *ReplicateGenerator {
	return &ReplicateGenerator{client: client, store: store}
}

// Name returns the provider identifier.
func (g *ReplicateGenerator) Name() string { return "replicate" }

// Generate runs a blocking prediction and downloads the output into a
// scratch file.
func (g *ReplicateGenerator) Generate(ctx context.Context, prompt string, opts Options) (Result, error) {
	outputURL, err := g.client.Predict(ctx, prompt, opts.DurationSec)
	if err != nil {
		return Result{}, fmt.Errorf("replicate predict: %w", err)
	}

	path, err := g.store.TempFile("replicate")
	if err != nil {
		return Result{}, fmt.Errorf("replicate scratch file: %w", err)
	}

	if err := g.client.Download(ctx, outputURL, path); err != nil {
		_ = g.store.CleanupTemp(ctx, []string{path})
		return Result{}, fmt.Errorf("replicate download: %w", err)
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
