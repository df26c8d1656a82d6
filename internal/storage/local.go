package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrS3NotConfigured is returned when S3 operations are attempted
// without proper configuration.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// LocalStorage implements the Storage interface using local disk.
// Scratch files live under tempDir and finished artifacts under outputDir.
type LocalStorage struct {
	tempDir   string
	outputDir string
}

// NewLocalStorage creates a new LocalStorage instance.
// Both directories are created if they don't exist. If tempDir is empty,
// a subdirectory of os.TempDir() is used; if outputDir is empty, "./outputs".
func NewLocalStorage(tempDir, outputDir string) (*LocalStorage, error) {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "videogen")
	}
	if outputDir == "" {
		outputDir = "./outputs"
	}

	if err := os.MkdirAll(tempDir, 0750); err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return &LocalStorage{tempDir: tempDir, outputDir: outputDir}, nil
}

// TempDir returns the temporary directory path.
func (s *LocalStorage) TempDir() string {
	return s.tempDir
}

// OutputDir returns the outputs directory path.
func (s *LocalStorage) OutputDir() string {
	return s.outputDir
}

// TempFile reserves a unique scratch file path under the temp directory.
func (s *LocalStorage) TempFile(name string) (string, error) {
	f, err := os.CreateTemp(s.tempDir, name+"_*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

// Promote moves a scratch file into the outputs directory.
// A cross-device rename falls back to copy-and-remove.
func (s *LocalStorage) Promote(ctx context.Context, tempPath, finalName string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	finalPath := filepath.Join(s.outputDir, finalName)
	if err := os.Rename(tempPath, finalPath); err == nil {
		return finalPath, nil
	}

	src, err := os.Open(tempPath) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return "", fmt.Errorf("open scratch file: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(finalPath) // #nosec G304 - path is generated by trusted internal code
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(finalPath)
		return "", fmt.Errorf("copy to output file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(finalPath)
		return "", fmt.Errorf("close output file: %w", err)
	}

	_ = os.Remove(tempPath)
	return finalPath, nil
}

// CleanupTemp removes the specified scratch files.
// It continues cleanup even if some files fail to delete,
// returning the first error encountered.
func (s *LocalStorage) CleanupTemp(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove temp file %s: %w", p, err)
			}
		}
	}
	return firstErr
}

// UploadToS3 is not supported by LocalStorage and returns ErrS3NotConfigured.
func (s *LocalStorage) UploadToS3(_ context.Context, _ string, _ io.Reader) (string, error) {
	return "", ErrS3NotConfigured
}
