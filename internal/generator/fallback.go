package generator

import (
	"context"
	"fmt"

	"github.com/promptmotion/videogen-api/internal/media"
	"github.com/promptmotion/videogen-api/internal/storage"
)

// Defaults used when the fallback receives unset rendering options.
const (
	fallbackWidth    = 1280
	fallbackHeight   = 720
	fallbackFPS      = 24
	fallbackDuration = 5
)

// FallbackGenerator synthesizes a placeholder clip locally with ffmpeg:
// a solid background with the prompt drawn on top. It needs no network
// access or credentials, so it sits last in the pipeline as the provider
// of last resort.
type FallbackGenerator struct {
	ffmpeg *media.FFmpeg
	store  storage.Storage
}

// NewFallbackGenerator creates the local fallback generator.
func NewFallbackGenerator(ffmpeg *media.FFmpeg, store storage.Storage) *FallbackGenerator {
	return &FallbackGenerator{ffmpeg: ffmpeg, store: store}
}

// Name returns the provider identifier.
func (g *FallbackGenerator) Name() string { return "fallback" }

// Generate renders the placeholder clip into a scratch file. Unset options
// fall back to sane defaults so the render cannot fail on bad parameters.
func (g *FallbackGenerator) Generate(ctx context.Context, prompt string, opts Options) (Result, error) {
	if opts.Width <= 0 {
		opts.Width = fallbackWidth
	}
	if opts.Height <= 0 {
		opts.Height = fallbackHeight
	}
	if opts.FPS <= 0 {
		opts.FPS = fallbackFPS
	}
	if opts.DurationSec <= 0 {
		opts.DurationSec = fallbackDuration
	}

	path, err := g.store.TempFile("fallback")
	if err != nil {
		return Result{}, fmt.Errorf("fallback scratch file: %w", err)
	}

	err = g.ffmpeg.RenderTextClip(ctx, path, media.ClipOptions{
		Text:        prompt,
		DurationSec: opts.DurationSec,
		Width:       opts.Width,
		Height:      opts.Height,
		FPS:         opts.FPS,
	})
	if err != nil {
		_ = g.store.CleanupTemp(ctx, []string{path})
		return Result{}, fmt.Errorf("fallback render: %w", err)
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
