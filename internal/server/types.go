// Package server provides the HTTP API for inspecting a project's chunk index
// and queueing rebuild and review jobs. DTOs live here, separate from the
// domain types.
package server

import "time"

// RebuildRequest is the body of POST /rebuild. An empty body means a full rebuild.
type RebuildRequest struct {
	// SkipFirstChunks drops that many chunks, in id order, before stitching.
	SkipFirstChunks int `json:"skip_first_chunks" validate:"gte=0"`
}

// ReviewRequest is the body of POST /review.
type ReviewRequest struct {
	// ChunkID is the chunk to re-synthesize.
	ChunkID *int `json:"chunk_id" validate:"required,gte=0"`
	// Text replaces the chunk text when present.
	Text *string `json:"text,omitempty" validate:"omitempty,min=1"`
}

// ChunkResponse describes one index entry.
type ChunkResponse struct {
	ID               int     `json:"id"`
	ChapterIndex     int     `json:"chapter_index"`
	RelativeIndex    int     `json:"relative_index"`
	AudioFile        string  `json:"audio_file"`
	Text             string  `json:"text"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
	// HasAudio reports whether the chunk's audio file exists.
	HasAudio bool `json:"has_audio"`
}

// ChunkListResponse is the response of GET /chunks.
type ChunkListResponse struct {
	Chunks []ChunkResponse `json:"chunks"`
	// TotalSeconds is the sum of estimated durations.
	TotalSeconds float64 `json:"total_seconds"`
}

// JobResultResponse is the outcome of a completed job.
type JobResultResponse struct {
	BookPath         string `json:"book_path,omitempty"`
	PublishedURL     string `json:"published_url,omitempty"`
	ChapterCount     int    `json:"chapter_count"`
	SkippedChunkIDs  []int  `json:"skipped_chunk_ids,omitempty"`
	NothingToRebuild bool   `json:"nothing_to_rebuild"`
}

// JobResponse is the HTTP representation of a job.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Kind is "rebuild" or "review".
	Kind string `json:"kind"`
	// Status is the current job status.
	Status string `json:"status"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
	// Result is set once the job completed.
	Result      *JobResultResponse `json:"result,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

// JobListResponse is the response of GET /jobs.
type JobListResponse struct {
	Jobs []JobResponse `json:"jobs"`
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
}
