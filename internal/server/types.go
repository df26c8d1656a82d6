// Package server provides the HTTP server for the video generation API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import "time"

// GenerateRequest is the HTTP request body for requesting a video.
type GenerateRequest struct {
	// Prompt is the text description of the desired video.
	Prompt string `json:"prompt" validate:"required,min=1,max=1000"`
	// Duration is the requested clip length in seconds. Optional.
	Duration int `json:"duration" validate:"omitempty,min=1,max=120"`
	// Provider optionally pins a preferred provider by name. Unknown
	// names are ignored and the default order applies.
	Provider string `json:"provider" validate:"omitempty,max=64"`
}

// GenerateResponse is the HTTP response after accepting a generation request.
type GenerateResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// JobResponse is the HTTP response for job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Status is the current job status.
	Status string `json:"status"`
	// Progress is the percentage of completion (0-100).
	Progress int `json:"progress"`
	// Prompt is the original user prompt.
	Prompt string `json:"prompt"`
	// Duration is the requested clip length in seconds.
	Duration int `json:"duration"`
	// Error contains the failure message if the job failed.
	Error string `json:"error,omitempty"`
	// ModelUsed is the provider that produced the video, once completed.
	ModelUsed string `json:"model_used,omitempty"`
	// DownloadURL is where the finished video can be fetched.
	DownloadURL string `json:"download_url,omitempty"`
	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`
}

// JobListResponse is the HTTP response for listing jobs.
type JobListResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Count int           `json:"count"`
}

// VideoResponse describes one finished video artifact.
type VideoResponse struct {
	// ID is the unique identifier for the artifact.
	ID string `json:"id"`
	// Filename is the base name of the stored file.
	Filename string `json:"filename"`
	// SizeBytes is the file size.
	SizeBytes int64 `json:"size_bytes"`
	// Duration is the video duration in seconds.
	Duration int `json:"duration"`
	// Resolution is the video resolution, e.g. "1280x720".
	Resolution string `json:"resolution,omitempty"`
	// FPS is the video frame rate.
	FPS int `json:"fps,omitempty"`
	// Format is the container format.
	Format string `json:"format"`
	// ModelUsed is the provider that produced the file.
	ModelUsed string `json:"model_used"`
	// URL is the external delivery URL when uploaded to object storage.
	URL string `json:"url,omitempty"`
	// CreatedAt is when the artifact was produced.
	CreatedAt time.Time `json:"created_at"`
}

// VideoListResponse is the HTTP response for listing videos.
type VideoListResponse struct {
	Videos []VideoResponse `json:"videos"`
	Count  int             `json:"count"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
	// Providers lists the configured generation providers in priority order.
	Providers []string `json:"providers"`
}
