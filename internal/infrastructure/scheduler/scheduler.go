// Package scheduler runs background jobs (e-Factura sync and retries, data
// exports) on a bounded worker pool fed by interval triggers and API requests.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobKind string

const (
	JobKindEFacturaSync  JobKind = "efactura_sync"
	JobKindEFacturaRetry JobKind = "efactura_retry"
	JobKindExport        JobKind = "export"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one unit of background work. RefID points at the row the job acts on
// (an export job id); sync and retry jobs only carry the tenant.
type Job struct {
	ID          uuid.UUID
	Kind        JobKind
	TenantID    uuid.UUID
	CompanyID   uuid.UUID
	RefID       uuid.UUID
	Status      JobStatus
	Error       string
	EnqueuedAt  time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func NewJob(kind JobKind, tenantID uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Kind:       kind,
		TenantID:   tenantID,
		Status:     JobStatusPending,
		EnqueuedAt: time.Now(),
	}
}

func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

type Handler interface {
	Handle(ctx context.Context, job *Job) error
}

type HandlerFunc func(ctx context.Context, job *Job) error

func (f HandlerFunc) Handle(ctx context.Context, job *Job) error { return f(ctx, job) }

// Metrics is satisfied by *telemetry.Metrics.
type Metrics interface {
	ObserveJob(jobType string, err error)
	SetQueueDepth(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveJob(string, error) {}
func (nopMetrics) SetQueueDepth(int)        {}

type Scheduler struct {
	config   config.SchedulerConfig
	logger   *zap.Logger
	metrics  Metrics
	handlers map[JobKind]Handler

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
}

func NewScheduler(cfg config.SchedulerConfig, metrics Metrics, logger *zap.Logger) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Scheduler{
		config:   cfg,
		logger:   logger.Named("scheduler"),
		metrics:  metrics,
		handlers: make(map[JobKind]Handler),
		jobs:     make(chan *Job, cfg.QueueSize),
	}
}

// Register must be called before Start.
func (s *Scheduler) Register(kind JobKind, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = h
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for i := range s.config.Workers {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Int("queue_size", s.config.QueueSize),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers until ctx expires.
// Jobs still queued are dropped; their rows stay pending and the triggers pick
// them up after a restart.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if dropped := len(s.jobs); dropped > 0 {
			s.logger.Warn("dropping queued jobs on shutdown", zap.Int("count", dropped))
		}
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) Submit(job *Job) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	if _, ok := s.handlers[job.Kind]; !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, job.Kind)
	}

	select {
	case s.jobs <- job:
		s.metrics.SetQueueDepth(len(s.jobs))
		s.logger.Debug("job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.String("tenant_id", job.TenantID.String()),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// EnqueueExport schedules the executor for a stored export job.
func (s *Scheduler) EnqueueExport(_ context.Context, tenantID, companyID, exportID uuid.UUID) error {
	job := NewJob(JobKindExport, tenantID)
	job.CompanyID = companyID
	job.RefID = exportID
	return s.Submit(job)
}

func (s *Scheduler) QueueDepth() int {
	return len(s.jobs)
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.metrics.SetQueueDepth(len(s.jobs))
			s.process(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) process(ctx context.Context, job *Job, workerID int) {
	s.mu.RLock()
	h := s.handlers[job.Kind]
	s.mu.RUnlock()

	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.String("tenant_id", job.TenantID.String()),
	)

	job.Start()
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	err := s.run(jobCtx, h, job)
	s.metrics.ObserveJob(string(job.Kind), err)
	if err != nil {
		job.Fail(err.Error())
		log.Error("job failed", zap.Error(err))
		return
	}
	job.Complete()
	log.Info("job completed", zap.Duration("elapsed", job.CompletedAt.Sub(*job.StartedAt)))
}

func (s *Scheduler) run(ctx context.Context, h Handler, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return h.Handle(ctx, job)
}
