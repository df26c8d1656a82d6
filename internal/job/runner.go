package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Static errors for runner operations.
var (
	// ErrQueueFull is returned when the run queue cannot accept more jobs.
	ErrQueueFull = errors.New("run queue is full")
	// ErrRunnerStopped is returned when a job is enqueued after shutdown.
	ErrRunnerStopped = errors.New("runner is stopped")
)

// Executor runs one job to a terminal state. Satisfied by *Service.
type Executor interface {
	Run(ctx context.Context, jobID string) error
}

// runTask is one queued job run. The done channel receives the run's
// outcome and is then closed, so callers can wait for completion.
type runTask struct {
	jobID string
	done  chan error
}

// Runner executes queued jobs on a fixed pool of background workers.
// Generation runs off the request path: HTTP handlers enqueue and return
// immediately while workers drive jobs to a terminal state.
type Runner struct {
	exec    Executor
	logger  *slog.Logger
	queue   chan runTask
	workers int

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewRunner creates a runner with the given worker pool and queue sizes.
// Non-positive values fall back to a single worker and a small queue.
func NewRunner(exec Executor, logger *slog.Logger, workers, queueSize int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Runner{
		exec:    exec,
		logger:  logger,
		queue:   make(chan runTask, queueSize),
		workers: workers,
	}
}

// Start launches the worker pool. Workers exit when the queue is closed
// by Stop or when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work(ctx, i)
	}
	r.logger.Info("job runner started", "workers", r.workers, "queue_size", cap(r.queue))
}

// Stop closes the queue and waits for in-flight runs to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("job runner stopped")
}

// Enqueue schedules a job run. The returned channel receives the run's
// outcome (nil on success) and is closed afterwards. Returns ErrQueueFull
// when the queue is at capacity and ErrRunnerStopped after shutdown.
func (r *Runner) Enqueue(jobID string) (<-chan error, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return nil, ErrRunnerStopped
	}

	task := runTask{jobID: jobID, done: make(chan error, 1)}
	select {
	case r.queue <- task:
		return task.done, nil
	default:
		return nil, fmt.Errorf("enqueue job %s: %w", jobID, ErrQueueFull)
	}
}

// work consumes the queue until it is closed or the context ends.
func (r *Runner) work(ctx context.Context, worker int) {
	defer r.wg.Done()

	for {
		// Shutdown wins over queued work so waiting callers are released.
		select {
		case <-ctx.Done():
			r.drain(ctx.Err())
			return
		default:
		}

		select {
		case <-ctx.Done():
			r.drain(ctx.Err())
			return
		case task, ok := <-r.queue:
			if !ok {
				return
			}
			err := r.exec.Run(ctx, task.jobID)
			if err != nil {
				r.logger.Error("job run finished with error",
					"worker", worker,
					"job_id", task.jobID,
					"error", err,
				)
			}
			task.done <- err
			close(task.done)
		}
	}
}

// drain fails whatever is still queued when the context ends, so no caller
// is left blocked on a done channel that will never be written.
func (r *Runner) drain(cause error) {
	for {
		select {
		case task, ok := <-r.queue:
			if !ok {
				return
			}
			r.logger.Warn("job run dropped on shutdown", "job_id", task.jobID)
			task.done <- fmt.Errorf("job %s not run: %w", task.jobID, cause)
			close(task.done)
		default:
			return
		}
	}
}
