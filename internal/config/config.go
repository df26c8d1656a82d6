// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidDefaultDuration is returned when DEFAULT_VIDEO_DURATION is out of range.
	ErrInvalidDefaultDuration = errors.New("config: DEFAULT_VIDEO_DURATION must be between 1 and MAX_VIDEO_DURATION")
	// ErrInvalidResolution is returned when VIDEO_RESOLUTION is not WIDTHxHEIGHT.
	ErrInvalidResolution = errors.New("config: VIDEO_RESOLUTION must be in WIDTHxHEIGHT form")
)

// Config holds all configuration for the application.
// No provider credential is required: with zero providers configured the
// service still completes jobs through the local fallback generator.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Storage settings
	OutputDir string `env:"OUTPUT_DIR, default=./outputs" json:"output_dir"`
	TempDir   string `env:"TEMP_DIR, default=/tmp/videogen" json:"temp_dir"`

	// Video defaults
	DefaultVideoDuration int    `env:"DEFAULT_VIDEO_DURATION, default=10" json:"default_video_duration"`
	MaxVideoDuration     int    `env:"MAX_VIDEO_DURATION, default=120" json:"max_video_duration"`
	VideoFPS             int    `env:"VIDEO_FPS, default=24" json:"video_fps"`
	VideoResolution      string `env:"VIDEO_RESOLUTION, default=1280x720" json:"video_resolution"`

	// Minimax provider settings (optional)
	MinimaxAPIKey       string        `env:"MINIMAX_API_KEY" json:"-"` // Masked in JSON
	MinimaxBaseURL      string        `env:"MINIMAX_BASE_URL, default=https://api.minimax.io/v1" json:"minimax_base_url"`
	MinimaxModel        string        `env:"MINIMAX_MODEL, default=MiniMax-Hailuo-2.3" json:"minimax_model"`
	MinimaxResolution   string        `env:"MINIMAX_RESOLUTION, default=720P" json:"minimax_resolution"`
	MinimaxPollInterval time.Duration `env:"MINIMAX_POLL_INTERVAL, default=3s" json:"minimax_poll_interval"`
	MinimaxMaxWait      time.Duration `env:"MINIMAX_MAX_WAIT, default=180s" json:"minimax_max_wait"`

	// Replicate provider settings (optional)
	ReplicateAPIToken string `env:"REPLICATE_API_TOKEN" json:"-"` // Masked in JSON
	ReplicateBaseURL  string `env:"REPLICATE_BASE_URL, default=https://api.replicate.com/v1" json:"replicate_base_url"`
	ReplicateModel    string `env:"REPLICATE_MODEL, default=anotherjesse/zeroscope-v2-xl" json:"replicate_model"`

	// Optional S3 settings for artifact delivery
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// MinimaxEnabled returns true if Minimax credentials are configured.
func (c *Config) MinimaxEnabled() bool {
	return c.MinimaxAPIKey != ""
}

// ReplicateEnabled returns true if Replicate credentials are configured.
func (c *Config) ReplicateEnabled() bool {
	return c.ReplicateAPIToken != ""
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the loaded configuration is coherent.
func (c *Config) Validate() error {
	if c.DefaultVideoDuration < 1 || c.DefaultVideoDuration > c.MaxVideoDuration {
		return ErrInvalidDefaultDuration
	}
	if _, _, err := c.ResolutionSize(); err != nil {
		return err
	}
	return nil
}

// ResolutionSize parses VIDEO_RESOLUTION into width and height.
func (c *Config) ResolutionSize() (width, height int, err error) {
	n, err := fmt.Sscanf(c.VideoResolution, "%dx%d", &width, &height)
	if err != nil || n != 2 || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidResolution, c.VideoResolution)
	}
	return width, height, nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, OutputDir: %s, TempDir: %s, DefaultVideoDuration: %d, MaxVideoDuration: %d, VideoFPS: %d, VideoResolution: %s, MinimaxEnabled: %t, ReplicateEnabled: %t, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.OutputDir,
		c.TempDir,
		c.DefaultVideoDuration,
		c.MaxVideoDuration,
		c.VideoFPS,
		c.VideoResolution,
		c.MinimaxEnabled(),
		c.ReplicateEnabled(),
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
