// Package generator defines the text-to-video provider contract and the
// pipeline that tries providers in order until one produces a clip.
package generator

import "context"

// Options carries the rendering parameters shared by all providers.
type Options struct {
	// DurationSec is the requested clip length in seconds.
	DurationSec int
	// Width and Height set the output resolution.
	Width  int
	Height int
	// FPS sets the output frame rate.
	FPS int
}

// Result describes a successfully generated clip. VideoPath points at a
// scratch file; the caller owns promoting it into permanent storage.
type Result struct {
	VideoPath   string
	Provider    string
	DurationSec int
	Width       int
	Height      int
	FPS         int
}

// Generator produces a video clip from a text prompt.
type Generator interface {
	// Name returns the provider identifier recorded on artifacts.
	Name() string

	// Generate renders a clip for the prompt and returns the scratch file
	// path. Implementations clean up their own scratch files on failure.
	Generate(ctx context.Context, prompt string, opts Options) (Result, error)
}
