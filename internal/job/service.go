package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/promptmotion/videogen-api/internal/artifact"
	"github.com/promptmotion/videogen-api/internal/generator"
	"github.com/promptmotion/videogen-api/internal/storage"
)

// Static errors for service operations.
var (
	// ErrEmptyPrompt is returned when a job is created without a prompt.
	ErrEmptyPrompt = errors.New("prompt is required")
	// ErrNotPending is returned when a run is requested for a job that is
	// not in the pending state. A completed job is never re-run.
	ErrNotPending = errors.New("job is not pending")
	// ErrNotCancellable is returned when a cancel request finds the job
	// already in a terminal state.
	ErrNotCancellable = errors.New("job is already in a terminal state")
)

// maxErrorLen caps the error message stored on a failed job.
const maxErrorLen = 300

// Pipeline is the generation engine the service drives. Satisfied by
// *generator.Pipeline.
type Pipeline interface {
	Generate(ctx context.Context, prompt, preferred string, opts generator.Options) (generator.Result, []generator.Attempt, error)
	Providers() []string
}

// DurationProber inspects a finished video file. Satisfied by *media.FFmpeg.
// A nil prober is allowed; artifact duration then falls back to the
// requested value.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// ServiceOptions holds the video defaults applied to every run.
type ServiceOptions struct {
	DefaultDurationSec int
	MaxDurationSec     int
	Width              int
	Height             int
	FPS                int
	// UploadToS3 additionally pushes finished artifacts to object storage.
	UploadToS3 bool
}

// Service orchestrates the video generation lifecycle: it creates jobs,
// claims them for processing, drives the provider pipeline, and records
// the resulting artifacts.
type Service struct {
	jobs      Repository
	artifacts artifact.Repository
	pipeline  Pipeline
	store     storage.Storage
	prober    DurationProber
	logger    *slog.Logger
	opts      ServiceOptions
}

// NewService creates a new job service.
func NewService(
	jobs Repository,
	artifacts artifact.Repository,
	pipeline Pipeline,
	store storage.Storage,
	prober DurationProber,
	logger *slog.Logger,
	opts ServiceOptions,
) *Service {
	return &Service{
		jobs:      jobs,
		artifacts: artifacts,
		pipeline:  pipeline,
		store:     store,
		prober:    prober,
		logger:    logger,
		opts:      opts,
	}
}

// CreateJob registers a new pending job. A non-positive duration falls back
// to the configured default and the result is clamped to the maximum.
func (s *Service) CreateJob(ctx context.Context, prompt string, durationSec int, providerHint string) (*Job, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	if durationSec <= 0 {
		durationSec = s.opts.DefaultDurationSec
	}
	if s.opts.MaxDurationSec > 0 && durationSec > s.opts.MaxDurationSec {
		durationSec = s.opts.MaxDurationSec
	}

	j := New(prompt, durationSec)
	j.ProviderHint = providerHint

	if err := s.jobs.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	s.logger.Info("job created",
		"job_id", j.ID,
		"duration_sec", durationSec,
		"provider_hint", providerHint,
	)

	return j, nil
}

// GetJob returns the job with the given ID.
func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.jobs.FindByID(ctx, jobID)
}

// ListJobs returns jobs matching the filter, newest first.
func (s *Service) ListJobs(ctx context.Context, filter ListFilter) ([]*Job, error) {
	return s.jobs.List(ctx, filter)
}

// Providers returns the configured provider names in priority order.
func (s *Service) Providers() []string {
	return s.pipeline.Providers()
}

// Cancel moves a non-terminal job to the cancelled state. Returns
// ErrNotCancellable when the job has already finished.
func (s *Service) Cancel(ctx context.Context, jobID string) error {
	err := s.jobs.CompareAndSwapStatus(ctx, jobID, StatusPending, StatusCancelled)
	if err == nil {
		s.logger.Info("job cancelled", "job_id", jobID)
		return nil
	}
	if !errors.Is(err, ErrStatusConflict) {
		return err
	}

	err = s.jobs.CompareAndSwapStatus(ctx, jobID, StatusProcessing, StatusCancelled)
	if err == nil {
		s.logger.Info("job cancelled while processing", "job_id", jobID)
		return nil
	}
	if errors.Is(err, ErrStatusConflict) {
		return fmt.Errorf("cancel job %s: %w", jobID, ErrNotCancellable)
	}
	return err
}

// Run executes one job to a terminal state. The job is claimed with an
// atomic pending-to-processing swap, so only one caller can own a run;
// any other caller, including a re-run of a finished job, gets ErrNotPending.
//
// A run that exhausts every provider marks the job failed and returns the
// cause. Errors from the job store itself take precedence, so a failure
// that could not be recorded is never silently dropped.
func (s *Service) Run(ctx context.Context, jobID string) error {
	err := s.jobs.CompareAndSwapStatus(ctx, jobID, StatusPending, StatusProcessing)
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return fmt.Errorf("claim job %s: %w", jobID, ErrNotPending)
		}
		return fmt.Errorf("claim job %s: %w", jobID, err)
	}

	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return s.failRun(ctx, jobID, fmt.Errorf("load claimed job: %w", err))
	}

	s.logger.Info("job processing started", "job_id", jobID, "prompt_len", len(j.Prompt))
	if err := s.checkpoint(ctx, j, 10); err != nil {
		return s.abortOrFail(ctx, jobID, "", err)
	}

	j.SetEnhancedPrompt(EnhancePrompt(j.Prompt))
	if err := s.checkpoint(ctx, j, 30); err != nil {
		return s.abortOrFail(ctx, jobID, "", err)
	}

	result, attempts, genErr := s.pipeline.Generate(ctx, j.EnhancedPrompt, j.ProviderHint, generator.Options{
		DurationSec: j.DurationSec,
		Width:       s.opts.Width,
		Height:      s.opts.Height,
		FPS:         s.opts.FPS,
	})
	if genErr != nil {
		return s.failRun(ctx, jobID, genErr)
	}
	if len(attempts) > 0 {
		s.logger.Warn("job completed after provider fallthrough",
			"job_id", jobID,
			"failed_attempts", len(attempts),
			"provider", result.Provider,
		)
	}
	if err := s.checkpoint(ctx, j, 70); err != nil {
		return s.abortOrFail(ctx, jobID, result.VideoPath, err)
	}

	a, err := s.persistArtifact(ctx, j, result)
	if err != nil {
		return s.failRun(ctx, jobID, err)
	}
	if err := s.checkpoint(ctx, j, 90); err != nil {
		return s.abortOrFail(ctx, jobID, "", err)
	}

	if err := s.jobs.CompareAndSwapStatus(ctx, jobID, StatusProcessing, StatusCompleted); err != nil {
		return s.abortOrFail(ctx, jobID, "", fmt.Errorf("finish job %s: %w", jobID, err))
	}
	if err := j.Complete(a.ID, result.Provider); err != nil {
		return fmt.Errorf("finish job %s: %w", jobID, err)
	}
	if err := s.jobs.Save(ctx, j); err != nil {
		return fmt.Errorf("save completed job %s: %w", jobID, err)
	}

	s.logger.Info("job completed",
		"job_id", jobID,
		"artifact_id", a.ID,
		"provider", result.Provider,
	)
	return nil
}

// checkpoint advances the job's progress and persists it. The write is
// conditional on the stored job still being in processing, so a run whose
// job was cancelled under it cannot overwrite the terminal state.
func (s *Service) checkpoint(ctx context.Context, j *Job, progress int) error {
	j.UpdateProgress(progress)
	if err := s.jobs.SaveIfStatus(ctx, j, StatusProcessing); err != nil {
		return fmt.Errorf("save job %s at progress %d: %w", j.ID, progress, err)
	}
	return nil
}

// abortOrFail resolves a mid-run error. A status conflict means the job was
// taken away, normally by an external cancellation, and the run just stops;
// anything else is a store failure and is recorded on the job best effort.
// The scratch file, if any, is discarded either way.
func (s *Service) abortOrFail(ctx context.Context, jobID, scratchPath string, cause error) error {
	s.discardScratch(ctx, scratchPath)
	if errors.Is(cause, ErrStatusConflict) {
		s.logger.Info("job run abandoned", "job_id", jobID, "reason", cause.Error())
		return fmt.Errorf("job %s no longer processing: %w", jobID, cause)
	}
	return s.failRun(ctx, jobID, cause)
}

// persistArtifact promotes the scratch file into permanent storage and
// records the artifact metadata.
func (s *Service) persistArtifact(ctx context.Context, j *Job, result generator.Result) (*artifact.Artifact, error) {
	a := artifact.New()
	a.Filename = j.ID + ".mp4"

	finalPath, err := s.store.Promote(ctx, result.VideoPath, a.Filename)
	if err != nil {
		s.discardScratch(ctx, result.VideoPath)
		return nil, fmt.Errorf("promote artifact: %w", err)
	}

	a.Path = finalPath
	a.Prompt = j.EnhancedPrompt
	a.ModelUsed = result.Provider
	a.DurationSec = result.DurationSec
	a.FPS = result.FPS
	if result.Width > 0 && result.Height > 0 {
		a.Resolution = fmt.Sprintf("%dx%d", result.Width, result.Height)
	}

	if info, err := os.Stat(finalPath); err == nil {
		a.SizeBytes = info.Size()
	}
	if s.prober != nil {
		if dur, err := s.prober.ProbeDuration(ctx, finalPath); err == nil && dur > 0 {
			a.DurationSec = int(dur + 0.5)
		}
	}

	if s.opts.UploadToS3 {
		s.uploadArtifact(ctx, a)
	}

	if err := s.artifacts.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}

	return a, nil
}

// uploadArtifact pushes the finished file to object storage. Delivery is
// best effort; a failed upload leaves the local artifact intact.
func (s *Service) uploadArtifact(ctx context.Context, a *artifact.Artifact) {
	f, err := os.Open(a.Path) // #nosec G304 - path is generated by trusted internal code
	if err != nil {
		s.logger.Warn("open artifact for upload", "artifact_id", a.ID, "error", err)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := s.store.UploadToS3(ctx, "videos/"+a.Filename, f)
	if err != nil {
		if !errors.Is(err, storage.ErrS3NotConfigured) {
			s.logger.Warn("artifact upload failed", "artifact_id", a.ID, "error", err)
		}
		return
	}
	a.URL = url
}

// failRun records the failure on the job. The original cause is returned
// unless the store itself fails, in which case the store error wins.
func (s *Service) failRun(ctx context.Context, jobID string, cause error) error {
	msg := summarizeError(cause)
	s.logger.Error("job failed", "job_id", jobID, "error", msg)

	if err := s.jobs.CompareAndSwapStatus(ctx, jobID, StatusProcessing, StatusFailed); err != nil {
		return fmt.Errorf("record failure for job %s: %w", jobID, err)
	}
	failed, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("record failure for job %s: %w", jobID, err)
	}
	failed.Error = msg
	failed.Progress = 0
	failed.ArtifactID = ""
	if err := s.jobs.Save(ctx, failed); err != nil {
		return fmt.Errorf("save failed job %s: %w", jobID, err)
	}

	return fmt.Errorf("job %s failed: %w", jobID, cause)
}

// discardScratch removes a leftover scratch file, logging on failure.
func (s *Service) discardScratch(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.store.CleanupTemp(ctx, []string{path}); err != nil {
		s.logger.Warn("cleanup scratch file", "path", path, "error", err)
	}
}

// summarizeError flattens an error chain into a bounded, single-line message
// suitable for storing on the job and returning to API clients.
func summarizeError(err error) string {
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return msg
}

// promptStyleSuffix is appended to user prompts to steer providers toward
// consistent output quality.
const promptStyleSuffix = "cinematic lighting, high detail, smooth motion"

// EnhancePrompt expands a raw user prompt with a deterministic style
// template. Prompts that already carry style direction are left alone.
func EnhancePrompt(prompt string) string {
	p := strings.TrimSpace(prompt)
	if strings.Contains(strings.ToLower(p), "cinematic") {
		return p
	}
	return p + ", " + promptStyleSuffix
}
