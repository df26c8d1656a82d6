// Package job provides the Job aggregate for tracking video generation requests.
// It includes the Job entity with state machine transitions, repository ports
// for persistence, and the Service that orchestrates the generation lifecycle.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/promptmotion/videogen-api/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusPending indicates the job is created but processing has not started.
	StatusPending Status = "pending"
	// StatusProcessing indicates the job is being worked on.
	StatusProcessing Status = "processing"
	// StatusCompleted indicates the job finished with an artifact.
	StatusCompleted Status = "completed"
	// StatusFailed indicates every generation candidate failed.
	StatusFailed Status = "failed"
	// StatusCancelled indicates the job was cancelled externally.
	// The core never sets this state itself but must not forbid it.
	StatusCancelled Status = "cancelled"
)

// IsValid returns true if the status is a known job state.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status represents a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
// Terminal states have no outgoing transitions.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {},
	StatusFailed:     {},
	StatusCancelled:  {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job represents one tracked request to turn a prompt into a video artifact.
// At a terminal state exactly one of Error and ArtifactID is set.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Prompt is the original user prompt (1-1000 characters).
	Prompt string
	// EnhancedPrompt is the prompt actually sent to providers.
	EnhancedPrompt string
	// DurationSec is the requested video duration hint in seconds.
	DurationSec int
	// ProviderHint optionally pins a preferred provider by name.
	ProviderHint string
	// Status is the current job state.
	Status Status
	// Progress is the percentage of completion (0-100).
	Progress int
	// Error contains the summarized error message if the job failed.
	Error string
	// ArtifactID references the produced artifact once completed.
	ArtifactID string
	// ModelUsed is the provider that actually produced the artifact.
	ModelUsed string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when processing finished.
	CompletedAt time.Time
}

// New creates a new Job for the given prompt with a generated ID
// and initial pending status.
func New(prompt string, durationSec int) *Job {
	now := time.Now()
	return &Job{
		ID:          id.Generate(),
		Prompt:      prompt,
		DurationSec: durationSec,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewWithID creates a new Job with the specified ID and initial pending status.
// Useful for testing or when the ID needs to be externally generated.
func NewWithID(jobID, prompt string, durationSec int) *Job {
	now := time.Now()
	return &Job{
		ID:          jobID,
		Prompt:      prompt,
		DurationSec: durationSec,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusProcessing:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from pending to processing.
func (j *Job) Start() error {
	return j.TransitionTo(StatusProcessing)
}

// Complete transitions the job to completed, linking the produced artifact
// and the provider that generated it. Progress is forced to 100: it reaches
// 100 only through this path.
func (j *Job) Complete(artifactID, modelUsed string) error {
	if err := j.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ArtifactID = artifactID
	j.ModelUsed = modelUsed
	j.Progress = 100
	j.Error = ""
	return nil
}

// Fail transitions the job to failed with a summarized error message.
// Progress is reset to 0 and any artifact reference is cleared.
func (j *Job) Fail(errMsg string) error {
	if err := j.TransitionTo(StatusFailed); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Error = errMsg
	j.Progress = 0
	j.ArtifactID = ""
	return nil
}

// Cancel transitions the job to cancelled.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// UpdateProgress raises the progress checkpoint. Progress is monotonically
// non-decreasing within a run and is capped below 100; only Complete sets 100.
func (j *Job) UpdateProgress(progress int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if progress > 99 {
		progress = 99
	}
	if progress <= j.Progress {
		return
	}
	j.Progress = progress
	j.UpdatedAt = time.Now()
}

// SetEnhancedPrompt records the prompt actually sent to providers.
func (j *Job) SetEnhancedPrompt(prompt string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.EnhancedPrompt = prompt
	j.UpdatedAt = time.Now()
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.GetStatus().IsTerminal()
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return &Job{
		ID:             j.ID,
		Prompt:         j.Prompt,
		EnhancedPrompt: j.EnhancedPrompt,
		DurationSec:    j.DurationSec,
		ProviderHint:   j.ProviderHint,
		Status:         j.Status,
		Progress:       j.Progress,
		Error:          j.Error,
		ArtifactID:     j.ArtifactID,
		ModelUsed:      j.ModelUsed,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
	}
}
