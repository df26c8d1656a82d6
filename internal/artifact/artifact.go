// Package artifact provides the record of produced video files.
// An artifact is created exactly once, on successful job completion,
// and is immutable afterwards.
package artifact

import (
	"time"

	"github.com/google/uuid"
)

// Artifact describes a produced video file and its metadata.
type Artifact struct {
	// ID is the unique identifier for this artifact.
	ID string
	// Filename is the base name of the stored file.
	Filename string
	// Path is the storage location of the file.
	Path string
	// SizeBytes is the file size.
	SizeBytes int64
	// DurationSec is the video duration in seconds.
	DurationSec int
	// Resolution is the video resolution, e.g. "1280x720".
	Resolution string
	// FPS is the video frame rate.
	FPS int
	// Format is the container format, e.g. "mp4".
	Format string
	// Prompt is the prompt actually used for generation.
	Prompt string
	// ModelUsed is the provider that produced the file.
	ModelUsed string
	// URL is the external download URL when uploaded to object storage.
	URL string
	// CreatedAt is when the artifact record was created.
	CreatedAt time.Time
}

// New creates an Artifact record with a generated ID.
func New() *Artifact {
	return &Artifact{
		ID:        uuid.NewString(),
		Format:    "mp4",
		CreatedAt: time.Now(),
	}
}
