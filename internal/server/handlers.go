package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/bookforge/internal/job"
	"github.com/maauso/bookforge/internal/project"
)

const maxBodyBytes = 1 << 20

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	jobs      *job.Service
	project   *project.Project
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance serving one project.
func NewHandlers(jobs *job.Service, p *project.Project, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		jobs:      jobs,
		project:   p,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// ListChunks handles GET /chunks requests.
func (h *Handlers) ListChunks(w http.ResponseWriter, _ *http.Request) {
	entries, ok := h.loadIndex(w)
	if !ok {
		return
	}

	resp := ChunkListResponse{Chunks: make([]ChunkResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Chunks = append(resp.Chunks, h.chunkResponse(e))
		resp.TotalSeconds += e.EstimatedSeconds
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetChunk handles GET /chunks/{id} requests.
func (h *Handlers) GetChunk(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, "chunk ID must be a non-negative integer", "INVALID_CHUNK_ID")
		return
	}

	entries, ok := h.loadIndex(w)
	if !ok {
		return
	}
	entry, found := project.FindEntry(entries, id)
	if !found {
		writeError(w, http.StatusNotFound, "chunk not found", "CHUNK_NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, h.chunkResponse(entry))
}

// Rebuild handles POST /rebuild requests.
func (h *Handlers) Rebuild(w http.ResponseWriter, r *http.Request) {
	var req RebuildRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	h.submit(w, r, job.KindRebuild, job.Params{SkipFirstChunks: req.SkipFirstChunks})
}

// Review handles POST /review requests.
func (h *Handlers) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	// Unknown chunks are rejected up front rather than as a failed job.
	entries, ok := h.loadIndex(w)
	if !ok {
		return
	}
	if _, found := project.FindEntry(entries, *req.ChunkID); !found {
		writeError(w, http.StatusNotFound, "chunk not found", "CHUNK_NOT_FOUND")
		return
	}

	h.submit(w, r, job.KindReview, job.Params{ChunkID: *req.ChunkID, Text: req.Text})
}

// ListJobs handles GET /jobs requests.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list jobs", "JOB_FETCH_FAILED")
		return
	}

	resp := JobListResponse{Jobs: make([]JobResponse, 0, len(jobs))}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, jobResponse(j))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetJob handles GET /jobs/{id} requests.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	found, err := h.jobs.GetJob(r.Context(), jobID)
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

	writeJSON(w, http.StatusOK, jobResponse(found))
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request, kind job.Kind, params job.Params) {
	created, err := h.jobs.Submit(r.Context(), kind, params)
	if err != nil {
		h.logger.Error("failed to create job",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create job", "JOB_CREATION_FAILED")
		return
	}

	writeJSON(w, http.StatusAccepted, jobResponse(created))
}

// decode reads and validates a JSON body. With allowEmpty an empty body
// leaves v at its zero value.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !(allowEmpty && errors.Is(err, io.EOF)) {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(v); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}

func (h *Handlers) loadIndex(w http.ResponseWriter) ([]project.IndexEntry, bool) {
	entries, err := h.project.LoadIndex()
	if err != nil {
		h.logger.Error("failed to load index", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load chunk index", "INDEX_LOAD_FAILED")
		return nil, false
	}
	return entries, true
}

func (h *Handlers) chunkResponse(e project.IndexEntry) ChunkResponse {
	_, err := os.Stat(h.project.ChunkPath(e.AudioFile))
	return ChunkResponse{
		ID:               e.ID,
		ChapterIndex:     e.ChapterIndex,
		RelativeIndex:    e.RelativeIndex,
		AudioFile:        e.AudioFile,
		Text:             e.Text,
		EstimatedSeconds: e.EstimatedSeconds,
		HasAudio:         err == nil,
	}
}

func jobResponse(j *job.Job) JobResponse {
	resp := JobResponse{
		ID:        j.ID,
		Kind:      string(j.Kind),
		Status:    string(j.Status),
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
	}
	if !j.StartedAt.IsZero() {
		startedAt := j.StartedAt
		resp.StartedAt = &startedAt
	}
	if !j.CompletedAt.IsZero() {
		completedAt := j.CompletedAt
		resp.CompletedAt = &completedAt
	}
	if j.Status == job.StatusCompleted {
		resp.Result = &JobResultResponse{
			BookPath:         j.Result.BookPath,
			PublishedURL:     j.Result.PublishedURL,
			ChapterCount:     j.Result.ChapterCount,
			SkippedChunkIDs:  j.Result.SkippedChunkIDs,
			NothingToRebuild: j.Result.NothingToRebuild,
		}
	}
	return resp
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
