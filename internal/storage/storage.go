// Package storage provides file storage for generation runs and final
// artifacts. It defines the Storage interface (port) for hexagonal
// architecture and implementations for local disk and S3 delivery.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for run-scoped scratch files and final
// artifact files. Scratch files live in a temp directory and are promoted
// into the outputs directory only when a run succeeds, so failed runs never
// leak partial artifacts.
type Storage interface {
	// TempFile reserves a unique scratch file path. The name parameter is
	// used as a hint for the filename. The file is created empty so the
	// path is guaranteed unique.
	TempFile(name string) (path string, err error)

	// Promote moves a scratch file into the outputs directory under the
	// given final name and returns the resulting path.
	Promote(ctx context.Context, tempPath, finalName string) (finalPath string, err error)

	// CleanupTemp removes the specified scratch files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// UploadToS3 uploads data to S3 and returns the public URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadToS3(ctx context.Context, key string, data io.Reader) (url string, err error)
}
