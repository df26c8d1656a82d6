package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/promptmotion/videogen-api/internal/artifact"
	"github.com/promptmotion/videogen-api/internal/job"
)

// Scheduler queues a job for background execution. Satisfied by *job.Runner.
type Scheduler interface {
	Enqueue(jobID string) (<-chan error, error)
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service   *job.Service
	scheduler Scheduler
	artifacts artifact.Repository
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *job.Service, scheduler Scheduler, artifacts artifact.Repository, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service:   service,
		scheduler: scheduler,
		artifacts: artifacts,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Providers: h.service.Providers(),
	})
}

// GenerateVideo handles POST /api/video/generate requests. The job is
// created synchronously and queued for background generation; the response
// returns immediately with the job ID to poll.
func (h *Handlers) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	createdJob, err := h.service.CreateJob(r.Context(), req.Prompt, req.Duration, req.Provider)
	if err != nil {
		if errors.Is(err, job.ErrEmptyPrompt) {
			writeError(w, http.StatusBadRequest, "prompt is required", "VALIDATION_ERROR")
			return
		}
		h.logger.Error("failed to create job",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create job", "JOB_CREATION_FAILED")
		return
	}

	if _, err := h.scheduler.Enqueue(createdJob.ID); err != nil {
		h.logger.Error("failed to queue job",
			slog.String("job_id", createdJob.ID),
			slog.String("error", err.Error()),
		)
		// The job would otherwise sit pending forever.
		if cancelErr := h.service.Cancel(r.Context(), createdJob.ID); cancelErr != nil {
			h.logger.Error("failed to cancel unqueued job",
				slog.String("job_id", createdJob.ID),
				slog.String("error", cancelErr.Error()),
			)
		}
		writeError(w, http.StatusServiceUnavailable, "generation queue is full", "QUEUE_FULL")
		return
	}

	h.logger.Info("generation accepted",
		slog.String("job_id", createdJob.ID),
		slog.Int("duration", createdJob.DurationSec),
	)

	writeJSON(w, http.StatusAccepted, GenerateResponse{
		ID:     createdJob.ID,
		Status: string(createdJob.Status),
	})
}

// GetJob handles GET /api/jobs/{id} requests.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	foundJob, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get job", "JOB_FETCH_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, jobToResponse(foundJob))
}

// ListJobs handles GET /api/jobs requests. Supports status, limit, and
// offset query parameters.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := job.ListFilter{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := job.Status(status)
		if !s.IsValid() {
			writeError(w, http.StatusBadRequest, "unknown status filter", "INVALID_STATUS")
			return
		}
		filter.Status = s
	}

	jobs, err := h.service.ListJobs(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list jobs",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list jobs", "JOB_LIST_FAILED")
		return
	}

	resp := JobListResponse{Jobs: make([]JobResponse, 0, len(jobs)), Count: len(jobs)}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, jobToResponse(j))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CancelJob handles POST /api/jobs/{id}/cancel requests.
func (h *Handlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	err := h.service.Cancel(r.Context(), jobID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, GenerateResponse{ID: jobID, Status: string(job.StatusCancelled)})
	case errors.Is(err, job.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
	case errors.Is(err, job.ErrNotCancellable):
		writeError(w, http.StatusConflict, "job already finished", "JOB_FINISHED")
	default:
		h.logger.Error("failed to cancel job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to cancel job", "JOB_CANCEL_FAILED")
	}
}

// DownloadVideo handles GET /api/video/download/{id} requests, where {id}
// is the job ID. The video is served once the job has completed.
func (h *Handlers) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	foundJob, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get job", "JOB_FETCH_FAILED")
		return
	}

	if foundJob.Status != job.StatusCompleted || foundJob.ArtifactID == "" {
		writeError(w, http.StatusConflict, "video is not ready", "VIDEO_NOT_READY")
		return
	}

	a, err := h.artifacts.FindByID(r.Context(), foundJob.ArtifactID)
	if err != nil {
		h.logger.Error("artifact missing for completed job",
			slog.String("job_id", jobID),
			slog.String("artifact_id", foundJob.ArtifactID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusNotFound, "video not found", "VIDEO_NOT_FOUND")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
	http.ServeFile(w, r, a.Path)
}

// ListVideos handles GET /api/video/list requests.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.artifacts.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list videos",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list videos", "VIDEO_LIST_FAILED")
		return
	}

	resp := VideoListResponse{Videos: make([]VideoResponse, 0, len(artifacts)), Count: len(artifacts)}
	for _, a := range artifacts {
		resp.Videos = append(resp.Videos, VideoResponse{
			ID:         a.ID,
			Filename:   a.Filename,
			SizeBytes:  a.SizeBytes,
			Duration:   a.DurationSec,
			Resolution: a.Resolution,
			FPS:        a.FPS,
			Format:     a.Format,
			ModelUsed:  a.ModelUsed,
			URL:        a.URL,
			CreatedAt:  a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// jobToResponse maps a domain job to its API representation.
func jobToResponse(j *job.Job) JobResponse {
	resp := JobResponse{
		ID:        j.ID,
		Status:    string(j.Status),
		Progress:  j.Progress,
		Prompt:    j.Prompt,
		Duration:  j.DurationSec,
		Error:     j.Error,
		ModelUsed: j.ModelUsed,
		CreatedAt: j.CreatedAt,
	}
	if j.Status == job.StatusCompleted && j.ArtifactID != "" {
		resp.DownloadURL = "/api/video/download/" + j.ID
	}
	return resp
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
