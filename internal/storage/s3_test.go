package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Storage(t *testing.T) {
	base := t.TempDir()

	s, err := NewS3Storage(filepath.Join(base, "tmp"), filepath.Join(base, "out"), S3Config{
		Bucket:          "videos",
		Region:          "us-east-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	})
	require.NoError(t, err)
	assert.NotNil(t, s.client)
	assert.Equal(t, "videos", s.bucket)

	// Local behaviour is inherited.
	p, err := s.TempFile("clip")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, s.TempDir()))
}

func TestS3Storage_UploadToS3(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	base := t.TempDir()
	s, err := NewS3Storage(filepath.Join(base, "tmp"), filepath.Join(base, "out"), S3Config{
		Bucket:          "videos",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	})
	require.NoError(t, err)

	url, err := s.UploadToS3(context.Background(), "clips/final.mp4", strings.NewReader("mp4-data"))
	require.NoError(t, err)

	assert.Equal(t, "https://videos.s3.us-east-1.amazonaws.com/clips/final.mp4", url)
	assert.Equal(t, "/videos/clips/final.mp4", gotPath)
	assert.Equal(t, "mp4-data", gotBody)
}
