// Package job queues rebuild and review operations requested over HTTP and
// tracks them through the IN_QUEUE, RUNNING and terminal states.
package job

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/maauso/bookforge/internal/job/id"
)

// Kind is the operation a job runs.
type Kind string

const (
	// KindRebuild restitches chapter and book audio from the index.
	KindRebuild Kind = "rebuild"
	// KindReview re-synthesizes one chunk and then rebuilds.
	KindReview Kind = "review"
)

// IsValid returns true if the kind is known.
func (k Kind) IsValid() bool {
	return k == KindRebuild || k == KindReview
}

// Status represents the current state of a Job.
type Status string

const (
	// StatusInQueue indicates the job is waiting to run.
	StatusInQueue Status = "IN_QUEUE"
	// StatusRunning indicates the job is being processed.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the job finished successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the job encountered an error during execution.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was stopped before finishing.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when the state machine forbids a move.
var ErrInvalidTransition = errors.New("invalid state transition")

// Terminal states have no outgoing transitions.
var validTransitions = map[Status][]Status{
	StatusInQueue:   {StatusRunning, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

func canTransition(from, to Status) bool {
	return slices.Contains(validTransitions[from], to)
}

// Params are the inputs of a job. Only the fields relevant to Kind are set.
type Params struct {
	SkipFirstChunks int
	ChunkID         int
	// Text replaces the reviewed chunk's text when non-nil.
	Text *string
}

// Result is what a completed job produced.
type Result struct {
	BookPath         string
	PublishedURL     string
	ChapterCount     int
	SkippedChunkIDs  []int
	NothingToRebuild bool
}

// Job is one queued rebuild or review. Fields are guarded by mu; read
// them through Clone or GetStatus while the job may still be running.
type Job struct {
	mu sync.RWMutex

	ID     string
	Kind   Kind
	Status Status
	Params Params
	Result Result // set on COMPLETED
	Error  string // set on FAILED

	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time // any terminal state
}

// New creates a new Job of the given kind with a generated ID and initial
// IN_QUEUE status.
func New(kind Kind, params Params) *Job {
	return NewWithID(id.Generate(), kind, params)
}

// NewWithID creates a new Job with the specified ID and initial IN_QUEUE status.
func NewWithID(jobID string, kind Kind, params Params) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Kind:      kind,
		Status:    StatusInQueue,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo moves the job to status and stamps the matching timestamp.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.transitionLocked(status)
}

func (j *Job) transitionLocked(status Status) error {
	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}
	return nil
}

// Start transitions the job from IN_QUEUE to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete records the result and transitions the job to COMPLETED.
func (j *Job) Complete(result Result) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(StatusCompleted); err != nil {
		return err
	}
	j.Result = result
	return nil
}

// Fail transitions the job to FAILED state with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(StatusFailed); err != nil {
		return err
	}
	j.Error = errMsg
	return nil
}

// Cancel transitions the job to CANCELLED state.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// GetStatus returns the current status.
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// Clone returns a deep copy that callers may read without locking.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	params := j.Params
	if params.Text != nil {
		text := *params.Text
		params.Text = &text
	}
	result := j.Result
	result.SkippedChunkIDs = slices.Clone(j.Result.SkippedChunkIDs)

	return &Job{
		ID:          j.ID,
		Kind:        j.Kind,
		Status:      j.Status,
		Params:      params,
		Result:      result,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
