package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./outputs", cfg.OutputDir)
	assert.Equal(t, "/tmp/videogen", cfg.TempDir)
	assert.Equal(t, 10, cfg.DefaultVideoDuration)
	assert.Equal(t, 120, cfg.MaxVideoDuration)
	assert.Equal(t, 24, cfg.VideoFPS)
	assert.Equal(t, "1280x720", cfg.VideoResolution)
	assert.Equal(t, 3*time.Second, cfg.MinimaxPollInterval)
	assert.Equal(t, 180*time.Second, cfg.MinimaxMaxWait)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_NoProvidersConfigured(t *testing.T) {
	// Provider credentials are optional: the fallback generator keeps the
	// service functional without any of them.
	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.MinimaxEnabled())
	assert.False(t, cfg.ReplicateEnabled())
	assert.False(t, cfg.S3Enabled())
}

func TestLoad_ProviderSettings(t *testing.T) {
	t.Setenv("MINIMAX_API_KEY", "mm-key")
	t.Setenv("MINIMAX_POLL_INTERVAL", "1s")
	t.Setenv("MINIMAX_MAX_WAIT", "30s")
	t.Setenv("REPLICATE_API_TOKEN", "r8-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.MinimaxEnabled())
	assert.True(t, cfg.ReplicateEnabled())
	assert.Equal(t, "mm-key", cfg.MinimaxAPIKey)
	assert.Equal(t, time.Second, cfg.MinimaxPollInterval)
	assert.Equal(t, 30*time.Second, cfg.MinimaxMaxWait)
}

func TestLoad_S3Settings(t *testing.T) {
	t.Setenv("S3_BUCKET", "videos")
	t.Setenv("S3_REGION", "eu-west-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.S3Enabled())
}

func TestValidate_InvalidDefaultDuration(t *testing.T) {
	t.Setenv("DEFAULT_VIDEO_DURATION", "500")
	t.Setenv("MAX_VIDEO_DURATION", "120")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDefaultDuration)
}

func TestValidate_InvalidResolution(t *testing.T) {
	t.Setenv("VIDEO_RESOLUTION", "widescreen")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func TestResolutionSize(t *testing.T) {
	cfg := &Config{VideoResolution: "1920x1080"}

	w, h, err := cfg.ResolutionSize()
	require.NoError(t, err)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{
		MinimaxAPIKey:     "super-secret",
		ReplicateAPIToken: "also-secret",
		VideoResolution:   "1280x720",
	}

	s := cfg.String()
	assert.NotContains(t, s, "super-secret")
	assert.NotContains(t, s, "also-secret")
}
