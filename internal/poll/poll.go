// Package poll provides a generic bounded-wait loop for awaiting the
// completion of long-running remote tasks. Provider clients expose a Task
// and the engine sleeps, queries, and repeats until the task completes,
// the remote reports failure, or the wait budget is exhausted.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State is the normalized lifecycle state of a remote task.
type State string

const (
	// StateQueued indicates the remote task is waiting to run.
	StateQueued State = "queued"
	// StateProcessing indicates the remote task is running.
	StateProcessing State = "processing"
	// StateCompleted indicates the remote task finished successfully.
	StateCompleted State = "completed"
	// StateFailed indicates the remote reported a failure.
	StateFailed State = "failed"
	// StateCancelled indicates the remote reported a cancellation.
	StateCancelled State = "cancelled"
)

// Snapshot is the result of a single status query.
type Snapshot struct {
	// State is the normalized task state.
	State State
	// OutputRef is the remote artifact reference, set when State is completed.
	OutputRef string
	// Detail carries the provider-reported status string for diagnostics.
	Detail string
}

// Task is a handle to a remote long-running operation.
type Task interface {
	// ID returns the opaque remote task identifier.
	ID() string
	// Status performs one status query.
	Status(ctx context.Context) (Snapshot, error)
}

// ErrInvalidInterval is returned when the poll interval is not positive.
var ErrInvalidInterval = errors.New("poll: interval must be positive")

// TimeoutError is returned when the wait budget is exhausted before the task
// reaches a terminal state. It is distinct from RemoteError so the caller can
// tell a slow task from a failed one.
type TimeoutError struct {
	TaskID  string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("poll: task %s timed out after %s", e.TaskID, e.Elapsed)
}

// RemoteError is returned when the remote explicitly reports failure or
// cancellation. Polling stops immediately.
type RemoteError struct {
	TaskID string
	State  State
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("poll: task %s reported %s: %s", e.TaskID, e.State, e.Detail)
	}
	return fmt.Sprintf("poll: task %s reported %s", e.TaskID, e.State)
}

// Wait polls the task until it completes, the remote reports failure, or the
// accumulated wait exceeds maxWait. Each iteration sleeps for interval before
// querying once. On success it returns the remote output reference.
//
// Failure modes: *TimeoutError when the budget is exhausted, *RemoteError on
// an explicit remote failure or cancellation, the context error when ctx is
// cancelled, and any status-query error as-is.
func Wait(ctx context.Context, task Task, interval, maxWait time.Duration) (string, error) {
	if interval <= 0 {
		return "", ErrInvalidInterval
	}

	var waited time.Duration
	for waited < maxWait {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("poll: task %s: %w", task.ID(), ctx.Err())
		case <-time.After(interval):
			waited += interval
		}

		snap, err := task.Status(ctx)
		if err != nil {
			return "", fmt.Errorf("poll: task %s status: %w", task.ID(), err)
		}

		switch snap.State {
		case StateCompleted:
			return snap.OutputRef, nil
		case StateFailed, StateCancelled:
			return "", &RemoteError{TaskID: task.ID(), State: snap.State, Detail: snap.Detail}
		}
	}

	return "", &TimeoutError{TaskID: task.ID(), Elapsed: waited}
}
