package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	base := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(base, "tmp"), filepath.Join(base, "out"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestNewLocalStorage_CreatesDirectories(t *testing.T) {
	s := newTestStorage(t)

	for _, dir := range []string{s.TempDir(), s.OutputDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", dir)
		}
	}
}

func TestTempFile_UniquePaths(t *testing.T) {
	s := newTestStorage(t)

	p1, err := s.TempFile("video")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := s.TempFile("video")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p1 == p2 {
		t.Errorf("expected unique paths, both were %s", p1)
	}
	if !strings.HasPrefix(filepath.Base(p1), "video_") {
		t.Errorf("expected name hint in path, got %s", p1)
	}
}

func TestPromote(t *testing.T) {
	s := newTestStorage(t)

	tmp, err := s.TempFile("video")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(tmp, []byte("mp4-data"), 0600); err != nil {
		t.Fatalf("write scratch file: %v", err)
	}

	final, err := s.Promote(context.Background(), tmp, "final.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Dir(final) != s.OutputDir() {
		t.Errorf("expected file in output dir, got %s", final)
	}
	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("read promoted file: %v", err)
	}
	if string(data) != "mp4-data" {
		t.Errorf("unexpected contents: %q", data)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Error("expected scratch file to be gone after promotion")
	}
}

func TestCleanupTemp(t *testing.T) {
	s := newTestStorage(t)

	var paths []string
	for i := 0; i < 3; i++ {
		p, err := s.TempFile("scrap")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		paths = append(paths, p)
	}
	// Missing files are tolerated.
	paths = append(paths, filepath.Join(s.TempDir(), "already-gone"))

	if err := s.CleanupTemp(context.Background(), paths); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed", p)
		}
	}
}

func TestCleanupTemp_ContextCancelled(t *testing.T) {
	s := newTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.CleanupTemp(ctx, []string{"whatever"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestUploadToS3_NotConfigured(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.UploadToS3(context.Background(), "key", strings.NewReader("data"))
	if !errors.Is(err, ErrS3NotConfigured) {
		t.Errorf("expected ErrS3NotConfigured, got %v", err)
	}
}
