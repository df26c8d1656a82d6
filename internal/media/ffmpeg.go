// Package media provides local video synthesis and inspection via the
// ffmpeg CLI. It backs the fallback generator and fills in artifact metadata.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Static errors for media operations.
var (
	// ErrInvalidDimensions is returned when the provided dimensions are not positive.
	ErrInvalidDimensions = errors.New("invalid dimensions: width and height must be positive")
	// ErrInvalidDuration is returned when duration is not positive.
	ErrInvalidDuration = errors.New("invalid duration: must be positive")
	// ErrFFprobeExecution is returned when ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
)

// ClipOptions configures a synthesized text clip.
type ClipOptions struct {
	// Text is drawn centered over the background.
	Text string
	// DurationSec is the clip length in seconds.
	DurationSec int
	// Width and Height set the output resolution.
	Width  int
	Height int
	// FPS sets the output frame rate.
	FPS int
}

// FFmpeg renders and inspects video files using the ffmpeg CLI.
type FFmpeg struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewFFmpeg creates a new FFmpeg helper.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpeg(ffmpegPath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath}
}

// RenderTextClip synthesizes an mp4 clip: a dark solid-color background with
// the text drawn centered, encoded with libx264. No network access involved.
func (f *FFmpeg) RenderTextClip(ctx context.Context, output string, opts ClipOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, opts.Width, opts.Height)
	}
	if opts.DurationSec <= 0 {
		return ErrInvalidDuration
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = 24
	}

	source := fmt.Sprintf("color=c=0x141428:s=%dx%d:d=%d:r=%d", opts.Width, opts.Height, opts.DurationSec, fps)

	args := []string{
		"-y",         // Overwrite output file without asking
		"-f", "lavfi",
		"-i", source,
	}

	if text := sanitizeDrawText(opts.Text); text != "" {
		filter := fmt.Sprintf(
			"drawtext=text='%s':fontcolor=white:fontsize=40:x=(w-text_w)/2:y=(h-text_h)/2",
			text,
		)
		args = append(args, "-vf", filter)
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		// Scratch paths have no extension, so the muxer must be explicit.
		"-f", "mp4",
		output,
	)

	return f.run(ctx, args)
}

// sanitizeDrawText escapes characters that are special to ffmpeg's drawtext
// filter and truncates overly long prompts.
func sanitizeDrawText(text string) string {
	const maxTextLen = 100
	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\\\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(text)
}

// ProbeDuration returns the duration in seconds of a media file.
// It uses ffprobe to extract the duration metadata.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - path is generated by trusted internal code
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(stdout.String()), "%f", &duration); err != nil {
		return 0, fmt.Errorf("parse ffprobe output %q: %w", stdout.String(), err)
	}

	return duration, nil
}

// run executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (f *FFmpeg) run(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
