package replicate

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
)

// Static errors for Replicate client operations.
var (
	// ErrTokenNotSet is returned when no API token is provided.
	ErrTokenNotSet = errors.New("replicate: API token is required")
	// ErrPredictionFailed is returned when the prediction reports a failure status.
	ErrPredictionFailed = errors.New("replicate: prediction failed")
	// ErrNoOutput is returned when a finished prediction carries no output URL.
	ErrNoOutput = errors.New("replicate: no output in prediction response")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("replicate: request failed")
	// ErrDownloadFailed is returned when the video download returns a non-2xx status.
	ErrDownloadFailed = errors.New("replicate: download failed")
)

// Client defines the interface for interacting with the Replicate API.
type Client interface {
	// Predict runs a blocking text-to-video prediction and returns the
	// output URL.
	Predict(ctx context.Context, prompt string, duration int) (outputURL string, err error)

	// Download fetches the video at url and writes it to destPath.
	Download(ctx context.Context, url, destPath string) error
}

// predictionFPS is the frame rate requested from zeroscope-style models.
const predictionFPS = 8

// maxPredictionFrames caps the requested frame count.
const maxPredictionFrames = 80

// HTTPClient is the HTTP implementation of the Replicate Client interface.
type HTTPClient struct {
	token      string
	baseURL    string
	model      string
	httpClient *http.Client
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithToken sets the API token for authentication.
func WithToken(token string) ClientOption {
	return func(hc *HTTPClient) {
		hc.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the Replicate API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the model identifier used for predictions.
func WithModel(model string) ClientOption {
	return func(hc *HTTPClient) {
		hc.model = model
	}
}

// NewClient creates a new Replicate HTTP client.
// The token can be set via the WithToken option. If not provided, it is read
// from the environment variable REPLICATE_API_TOKEN. A missing token is
// reported here, at construction time.
func NewClient(opts ...ClientOption) (*HTTPClient, error) {
	c := &HTTPClient{
		baseURL: "https://api.replicate.com/v1",
		model:   "anotherjesse/zeroscope-v2-xl",
		// Blocking predictions hold the connection open while the model runs.
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.token == "" {
		c.token = os.Getenv("REPLICATE_API_TOKEN")
	}

	if c.token == "" {
		return nil, ErrTokenNotSet
	}

	return c, nil
}

// Predict runs a blocking text-to-video prediction and returns the output URL.
// Any non-success status, malformed body, or timeout surfaces as a single
// call-level failure.
func (c *HTTPClient) Predict(ctx context.Context, prompt string, duration int) (string, error) {
	numFrames := duration * predictionFPS
	if numFrames > maxPredictionFrames {
		numFrames = maxPredictionFrames
	}

	reqBody := predictionRequest{
		Model: c.model,
		Input: predictionInput{
			Prompt:    prompt,
			NumFrames: numFrames,
			FPS:       predictionFPS,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("replicate: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("replicate: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	// Ask the API to hold the request until the prediction finishes.
	req.Header.Set("Prefer", "wait")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("replicate: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("replicate: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	var prediction predictionResponse
	if err := json.Unmarshal(respBody, &prediction); err != nil {
		return "", fmt.Errorf("replicate: unmarshal response: %w", err)
	}

	switch prediction.Status {
	case "failed", "canceled":
		if prediction.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrPredictionFailed, prediction.Error)
		}
		return "", fmt.Errorf("%w: status %s", ErrPredictionFailed, prediction.Status)
	}

	output := prediction.outputURL()
	if output == "" {
		return "", ErrNoOutput
	}

	return output, nil
}

// Download fetches the video at url and writes it to destPath.
func (c *HTTPClient) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("replicate: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("replicate: download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w with status %d", ErrDownloadFailed, resp.StatusCode)
	}

	f, err := os.Create(destPath) // #nosec G304 - destPath is generated by trusted internal code
	if err != nil {
		return fmt.Errorf("replicate: create output file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("replicate: write output file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("replicate: close output file: %w", err)
	}

	return nil
}
