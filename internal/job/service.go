package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maauso/bookforge/internal/book"
	"github.com/maauso/bookforge/internal/project"
)

// ErrInvalidKind is returned by Submit for an unknown job kind.
var ErrInvalidKind = errors.New("invalid job kind")

// Runner executes book operations. *book.Service implements it.
type Runner interface {
	Rebuild(ctx context.Context, p *project.Project, opts book.RebuildOptions) (*book.RebuildResult, error)
	Review(ctx context.Context, p *project.Project, req book.ReviewRequest) (*book.RebuildResult, error)
}

var _ Runner = (*book.Service)(nil)

// Service queues rebuild and review jobs for one project and runs them in
// the background, one at a time. Running jobs serially keeps a review from
// rewriting a chunk while another job is stitching it.
type Service struct {
	repo    Repository
	runner  Runner
	project *project.Project
	logger  *slog.Logger

	runMu  sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates a Service. Call Close to stop accepting work and
// cancel running jobs.
func NewService(repo Repository, runner Runner, p *project.Project, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:    repo,
		runner:  runner,
		project: p,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit persists a new IN_QUEUE job and starts it in the background.
func (s *Service) Submit(ctx context.Context, kind Kind, params Params) (*Job, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if err := s.ctx.Err(); err != nil {
		return nil, fmt.Errorf("job service closed: %w", err)
	}

	job := New(kind, params)
	if err := s.repo.Save(ctx, job); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("job queued",
		slog.String("job_id", job.ID),
		slog.String("kind", string(kind)),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(job)
	}()

	return job.Clone(), nil
}

// GetJob retrieves a job by ID.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all jobs, oldest first.
func (s *Service) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// Wait blocks until every submitted job has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels running and queued jobs and waits for them to stop.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) run(job *Job) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx := s.ctx
	if ctx.Err() != nil {
		s.finish(job, job.Cancel())
		return
	}

	if err := job.Start(); err != nil {
		s.finish(job, err)
		return
	}
	s.save(job)

	res, err := s.execute(ctx, job)
	switch {
	case err == nil:
		s.finish(job, job.Complete(resultFrom(res)))
	case ctx.Err() != nil:
		s.finish(job, job.Cancel())
	default:
		s.logger.Error("job failed",
			slog.String("job_id", job.ID),
			slog.String("kind", string(job.Kind)),
			slog.String("error", err.Error()),
		)
		s.finish(job, job.Fail(err.Error()))
	}
}

func (s *Service) execute(ctx context.Context, job *Job) (*book.RebuildResult, error) {
	switch job.Kind {
	case KindRebuild:
		return s.runner.Rebuild(ctx, s.project, book.RebuildOptions{SkipFirstChunks: job.Params.SkipFirstChunks})
	case KindReview:
		return s.runner.Review(ctx, s.project, book.ReviewRequest{ChunkID: job.Params.ChunkID, Text: job.Params.Text})
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, job.Kind)
	}
}

func (s *Service) finish(job *Job, transitionErr error) {
	if transitionErr != nil {
		s.logger.Error("job state transition failed",
			slog.String("job_id", job.ID),
			slog.String("error", transitionErr.Error()),
		)
	}
	s.save(job)
	s.logger.Info("job finished",
		slog.String("job_id", job.ID),
		slog.String("status", string(job.GetStatus())),
	)
}

// save uses a background context so the final state is stored even after
// Close cancelled the job.
func (s *Service) save(job *Job) {
	if err := s.repo.Save(context.Background(), job); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
	}
}

func resultFrom(res *book.RebuildResult) Result {
	if res == nil {
		return Result{}
	}
	return Result{
		BookPath:         res.BookPath,
		PublishedURL:     res.PublishedURL,
		ChapterCount:     len(res.ChapterPaths),
		SkippedChunkIDs:  res.SkippedChunkIDs,
		NothingToRebuild: res.NothingToRebuild,
	}
}
