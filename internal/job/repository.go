package job

import (
	"context"
	"errors"
)

// ErrJobNotFound is returned when a job cannot be found by ID.
var ErrJobNotFound = errors.New("job not found")

// ErrStatusConflict is returned when a compare-and-swap transition finds the
// job in a different state than expected. It is the single-owner guard: two
// workers racing to claim the same pending job cannot both win.
var ErrStatusConflict = errors.New("job status conflict")

// ListFilter narrows List results. A zero value lists everything.
type ListFilter struct {
	// Status filters by job state when non-empty.
	Status Status
	// Offset skips the first N jobs (newest first).
	Offset int
	// Limit caps the number of returned jobs. Zero means no cap.
	Limit int
}

// Repository defines the interface for job persistence.
// It acts as a port in the hexagonal architecture pattern.
type Repository interface {
	// Save persists a job to the storage.
	// If the job already exists, it should be updated.
	Save(ctx context.Context, job *Job) error

	// FindByID retrieves a job by its unique identifier.
	// Returns ErrJobNotFound if the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)

	// List returns jobs matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Job, error)

	// SaveIfStatus persists the job only while the stored record is still
	// in the expected status, refusing with ErrStatusConflict otherwise.
	// Progress checkpoints use it so a run cannot overwrite a job that was
	// cancelled under it.
	SaveIfStatus(ctx context.Context, job *Job, expected Status) error

	// CompareAndSwapStatus atomically transitions a job from one status to
	// another. Returns ErrJobNotFound if the job does not exist,
	// ErrStatusConflict if the job is not in the expected state, and
	// ErrInvalidTransition if the state machine forbids the transition.
	CompareAndSwapStatus(ctx context.Context, id string, from, to Status) error

	// Delete removes a job from storage.
	// Returns ErrJobNotFound if the job does not exist.
	Delete(ctx context.Context, id string) error
}
