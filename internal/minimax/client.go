package minimax

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/promptmotion/videogen-api/internal/poll"
)

// Static errors for Minimax client operations.
var (
	// ErrAPIKeyNotSet is returned when no API key is provided.
	ErrAPIKeyNotSet = errors.New("minimax: API key is required")
	// ErrTaskIDRequired is returned when the task ID is not provided.
	ErrTaskIDRequired = errors.New("minimax: task ID is required")
	// ErrNoTaskReturned is returned when the submit response contains neither
	// a video URL nor a task ID.
	ErrNoTaskReturned = errors.New("minimax: submit failed: no task ID or video URL returned")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("minimax: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("minimax: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("minimax: request failed")
	// ErrDownloadFailed is returned when the video download returns a non-2xx status.
	ErrDownloadFailed = errors.New("minimax: download failed")
)

// Client defines the interface for interacting with the Minimax video API.
type Client interface {
	// Submit requests a video generation and returns either a direct video
	// URL or a task ID to poll.
	Submit(ctx context.Context, prompt string, duration int, resolution string) (SubmitResult, error)

	// Task returns a pollable handle for a submitted generation task.
	Task(taskID string) poll.Task

	// Download fetches the video at url and writes it to destPath.
	Download(ctx context.Context, url, destPath string) error
}

// HTTPClient is the HTTP implementation of the Minimax Client interface.
type HTTPClient struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) ClientOption {
	return func(hc *HTTPClient) {
		hc.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the Minimax API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the model identifier sent with submissions.
func WithModel(model string) ClientOption {
	return func(hc *HTTPClient) {
		hc.model = model
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(hc *HTTPClient) {
		hc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseBackoff = d
	}
}

// NewClient creates a new Minimax HTTP client.
// The API key can be set via the WithAPIKey option. If not provided,
// it is read from the environment variable MINIMAX_API_KEY. A missing key
// is reported here, at construction time, so unconfigured providers can be
// skipped without a network round trip.
func NewClient(opts ...ClientOption) (*HTTPClient, error) {
	c := &HTTPClient{
		baseURL:     "https://api.minimax.io/v1",
		model:       "MiniMax-Hailuo-2.3",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}

	// Apply options first to allow WithAPIKey to set the API key
	for _, opt := range opts {
		opt(c)
	}

	// If API key was not set via option, try environment variable
	if c.apiKey == "" {
		c.apiKey = os.Getenv("MINIMAX_API_KEY")
	}

	if c.apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	return c, nil
}

// Submit requests a video generation. The response either carries a direct
// video URL (generation completed inline) or a task ID for polling.
func (c *HTTPClient) Submit(ctx context.Context, prompt string, duration int, resolution string) (SubmitResult, error) {
	reqBody := generationRequest{
		Model:      c.model,
		Prompt:     prompt,
		Duration:   duration,
		Resolution: resolution,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("minimax: marshal request: %w", err)
	}

	url := c.baseURL + "/video_generation"

	var resp generationResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, url, bodyBytes, &resp); err != nil {
		return SubmitResult{}, err
	}

	result := SubmitResult{
		TaskID:   resp.TaskID,
		VideoURL: resp.extractVideoURL(),
	}
	if result.TaskID == "" {
		result.TaskID = resp.ID
	}
	if result.TaskID == "" && result.VideoURL == "" {
		if resp.Error != "" {
			return SubmitResult{}, fmt.Errorf("%w: %s", ErrNoTaskReturned, resp.Error)
		}
		return SubmitResult{}, ErrNoTaskReturned
	}

	return result, nil
}

// Task returns a pollable handle for a generation task.
func (c *HTTPClient) Task(taskID string) poll.Task {
	return &generationTask{client: c, taskID: taskID}
}

// generationTask adapts one Minimax task to the polling engine's contract.
type generationTask struct {
	client *HTTPClient
	taskID string
}

// ID returns the remote task identifier.
func (t *generationTask) ID() string { return t.taskID }

// Status performs one status query and normalizes the provider response.
func (t *generationTask) Status(ctx context.Context) (poll.Snapshot, error) {
	if t.taskID == "" {
		return poll.Snapshot{}, ErrTaskIDRequired
	}

	url := fmt.Sprintf("%s/video_generation/%s", t.client.baseURL, t.taskID)

	var resp statusResponse
	if err := t.client.doRequestWithRetry(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return poll.Snapshot{}, err
	}

	// A present output reference wins regardless of the status string.
	if ref := resp.extractVideoURL(); ref != "" {
		return poll.Snapshot{State: poll.StateCompleted, OutputRef: ref, Detail: resp.Status}, nil
	}

	return poll.Snapshot{State: mapState(resp.Status), Detail: statusDetail(&resp.taskStatus)}, nil
}

// mapState normalizes Minimax status strings to the polling engine's states.
// Unknown statuses are treated as still processing so the engine keeps waiting.
func mapState(status string) poll.State {
	switch strings.ToLower(status) {
	case "queued", "queueing", "preparing", "submitted":
		return poll.StateQueued
	case "failed", "fail", "error":
		return poll.StateFailed
	case "canceled", "cancelled":
		return poll.StateCancelled
	case "success", "completed", "finished":
		return poll.StateCompleted
	default:
		return poll.StateProcessing
	}
}

// statusDetail builds the diagnostics string from a status envelope.
func statusDetail(t *taskStatus) string {
	if t.Error != "" {
		return fmt.Sprintf("%s: %s", t.Status, t.Error)
	}
	return t.Status
}

// Download fetches the video at url and writes it to destPath.
func (c *HTTPClient) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("minimax: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("minimax: download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w with status %d", ErrDownloadFailed, resp.StatusCode)
	}

	f, err := os.Create(destPath) // #nosec G304 - destPath is generated by trusted internal code
	if err != nil {
		return fmt.Errorf("minimax: create output file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("minimax: write output file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("minimax: close output file: %w", err)
	}

	return nil
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry.
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, method, url string, body []byte, result interface{}) error {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("minimax: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}

		err := c.doRequest(ctx, method, url, body, result)
		if err == nil {
			return nil
		}

		// Check if error is retryable
		if !isRetryable(err) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("minimax: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
func (c *HTTPClient) doRequest(ctx context.Context, method, url string, body []byte, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("minimax: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("minimax: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("minimax: read response: %w", err)}
	}

	// Handle non-2xx status codes
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 5xx errors are retryable
		if resp.StatusCode >= 500 {
			return &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		// 429 (rate limit) is retryable
		if resp.StatusCode == 429 {
			return &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		// Other errors are not retryable
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("minimax: unmarshal response: %w", err)
		}
	}

	return nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
