/*
jobs.go - Background batch planning jobs

PURPOSE:
  Runs batches of plan requests off the request path. A client submits a
  list of plans, gets a job ID back immediately and polls the job until it
  reaches a terminal state.

DESIGN:
  - A fixed pool of worker goroutines consumes a bounded queue
  - Each job plans its requests chunk by chunk through Planner.PlanAll,
    updating progress after every chunk
  - Every job owns a context; Cancel stops it between chunks and aborts
    the plans in flight
  - A janitor goroutine forgets terminal jobs after the retention period

JOB STATES:
  queued -> running -> completed | failed | cancelled
  queued -> cancelled

  "failed" means the job itself could not finish (a plan could not be
  saved). A plan rejected for bad input is recorded on its item and the
  job still completes.

USAGE:
  runner := NewJobRunner(planner, store, plans, logger, JobRunnerConfig{Workers: 2})
  runner.Start()
  defer runner.Stop()
  job, err := runner.Submit(plans, true)

SEE ALSO:
  - timeoff/batch.go: PlanAll
  - handlers.go: SubmitJob, GetJob, CancelJob endpoints
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/rest-planner/factory"
	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/timeoff"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when no more jobs can be queued.
	ErrQueueFull = errors.New("job queue is full")

	// ErrJobFinished is returned when cancelling a job that already ended.
	ErrJobFinished = errors.New("job already finished")

	// ErrRunnerStopped is returned when submitting to a runner that is not running.
	ErrRunnerStopped = errors.New("job runner is not running")
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the job will not change any more.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// JobPlan is one plan of a batch, parsed and ready to run.
type JobPlan struct {
	Request timeoff.Request
	JSON    factory.PlanJSON
}

// JobItem is the outcome of one plan.
type JobItem struct {
	Index         int
	Name          string
	PlanID        generic.PlanID
	TotalRestDays int
	UsedLeave     generic.Amount
	Score         float64
	Err           error
}

// Job is a snapshot of a batch job.
type Job struct {
	ID         generic.JobID
	Status     JobStatus
	Save       bool
	Total      int
	Done       int
	Failed     int
	Items      []JobItem
	Err        error
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// JobRunnerConfig tunes the runner. Zero values pick defaults.
type JobRunnerConfig struct {
	Workers         int           // Jobs running at once (default: 2)
	PlanWorkers     int           // Plans in flight per job (default: one per CPU)
	QueueSize       int           // Jobs waiting for a worker (default: 32)
	ChunkSize       int           // Plans between progress updates (default: 8)
	Retention       time.Duration // How long finished jobs stay visible (default: 1 hour)
	CleanupInterval time.Duration // How often finished jobs are purged (default: 5 minutes)
}

func (c JobRunnerConfig) withDefaults() JobRunnerConfig {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 32
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 8
	}
	if c.Retention <= 0 {
		c.Retention = time.Hour
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	return c
}

// job is the runner's mutable record behind a Job snapshot.
type job struct {
	Job
	plans  []JobPlan
	ctx    context.Context
	cancel context.CancelFunc
}

// JobRunner executes batch jobs in the background.
type JobRunner struct {
	planner *timeoff.Planner
	store   generic.PlanStore
	factory *factory.PlanFactory
	logger  *zap.Logger
	cfg     JobRunnerConfig
	now     func() time.Time

	mu      sync.Mutex
	jobs    map[generic.JobID]*job
	order   []generic.JobID
	queue   chan *job
	ticker  *time.Ticker
	stop    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewJobRunner creates a runner. store may be nil when plans are never saved.
func NewJobRunner(planner *timeoff.Planner, store generic.PlanStore, plans *factory.PlanFactory, logger *zap.Logger, cfg JobRunnerConfig) *JobRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if plans == nil {
		plans = factory.NewPlanFactory(factory.PlanDefaults{})
	}
	return &JobRunner{
		planner: planner,
		store:   store,
		factory: plans,
		logger:  logger.Named("jobs"),
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		jobs:    make(map[generic.JobID]*job),
	}
}

// Start launches the workers and the janitor.
func (jr *JobRunner) Start() {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	if jr.running {
		return
	}
	jr.queue = make(chan *job, jr.cfg.QueueSize)
	jr.stop = make(chan struct{})
	jr.ctx, jr.cancel = context.WithCancel(context.Background())
	jr.ticker = time.NewTicker(jr.cfg.CleanupInterval)
	jr.running = true

	for i := 0; i < jr.cfg.Workers; i++ {
		jr.wg.Add(1)
		go jr.work()
	}
	jr.wg.Add(1)
	go jr.janitor()

	jr.logger.Info("Job runner started",
		zap.Int("workers", jr.cfg.Workers),
		zap.Int("queue_size", jr.cfg.QueueSize),
		zap.Duration("retention", jr.cfg.Retention))
}

// Stop cancels running jobs, marks queued ones cancelled and waits for
// every goroutine to exit.
func (jr *JobRunner) Stop() {
	jr.mu.Lock()
	if !jr.running {
		jr.mu.Unlock()
		return
	}
	jr.running = false
	jr.ticker.Stop()
	close(jr.stop)
	jr.cancel()
	jr.mu.Unlock()

	jr.wg.Wait()

	jr.mu.Lock()
	defer jr.mu.Unlock()
	for {
		select {
		case j := <-jr.queue:
			if !j.Status.Terminal() {
				jr.finishLocked(j, JobCancelled, nil)
			}
		default:
			jr.logger.Info("Job runner stopped")
			return
		}
	}
}

// Submit queues a batch. The returned snapshot is in the queued state.
func (jr *JobRunner) Submit(plans []JobPlan, save bool) (Job, error) {
	if len(plans) == 0 {
		return Job{}, &generic.ConfigError{Field: "plans", Message: "must not be empty"}
	}
	if save && jr.store == nil {
		return Job{}, &generic.ConfigError{Field: "save", Message: "is not available without a plan store"}
	}

	jr.mu.Lock()
	defer jr.mu.Unlock()

	if !jr.running {
		return Job{}, ErrRunnerStopped
	}

	ctx, cancel := context.WithCancel(jr.ctx)
	j := &job{
		Job: Job{
			ID:        generic.JobID(uuid.NewString()),
			Status:    JobQueued,
			Save:      save,
			Total:     len(plans),
			CreatedAt: jr.now(),
		},
		plans:  plans,
		ctx:    ctx,
		cancel: cancel,
	}

	select {
	case jr.queue <- j:
	default:
		cancel()
		return Job{}, ErrQueueFull
	}
	jr.jobs[j.ID] = j
	jr.order = append(jr.order, j.ID)

	jr.logger.Info("Job queued",
		zap.String("job_id", string(j.ID)),
		zap.Int("plans", len(plans)),
		zap.Bool("save", save))
	return j.snapshot(), nil
}

// Get returns a snapshot of a job.
func (jr *JobRunner) Get(id generic.JobID) (Job, error) {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	j, ok := jr.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", generic.ErrJobNotFound, id)
	}
	return j.snapshot(), nil
}

// List returns every known job, oldest first.
func (jr *JobRunner) List() []Job {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	out := make([]Job, 0, len(jr.order))
	for _, id := range jr.order {
		out = append(out, jr.jobs[id].snapshot())
	}
	return out
}

// Cancel stops a job. A queued job is cancelled at once; a running job
// stops after the plans in flight return.
func (jr *JobRunner) Cancel(id generic.JobID) (Job, error) {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	j, ok := jr.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", generic.ErrJobNotFound, id)
	}
	if j.Status.Terminal() {
		return j.snapshot(), ErrJobFinished
	}

	j.cancel()
	if j.Status == JobQueued {
		jr.finishLocked(j, JobCancelled, nil)
	}
	jr.logger.Info("Job cancel requested", zap.String("job_id", string(id)), zap.String("status", string(j.Status)))
	return j.snapshot(), nil
}

// Purge forgets terminal jobs finished before the retention window and
// returns how many were removed.
func (jr *JobRunner) Purge() int {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	cutoff := jr.now().Add(-jr.cfg.Retention)
	kept := jr.order[:0]
	removed := 0
	for _, id := range jr.order {
		j := jr.jobs[id]
		if j.Status.Terminal() && j.FinishedAt.Before(cutoff) {
			delete(jr.jobs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	jr.order = kept

	if removed > 0 {
		jr.logger.Debug("Purged finished jobs", zap.Int("removed", removed))
	}
	return removed
}

// =============================================================================
// WORKERS
// =============================================================================

func (jr *JobRunner) work() {
	defer jr.wg.Done()

	for {
		select {
		case j := <-jr.queue:
			jr.process(j)
		case <-jr.stop:
			return
		}
	}
}

func (jr *JobRunner) janitor() {
	defer jr.wg.Done()

	for {
		select {
		case <-jr.ticker.C:
			jr.Purge()
		case <-jr.stop:
			return
		}
	}
}

func (jr *JobRunner) process(j *job) {
	jr.mu.Lock()
	if j.Status != JobQueued {
		jr.mu.Unlock()
		return
	}
	j.Status = JobRunning
	j.StartedAt = jr.now()
	jr.mu.Unlock()

	log := jr.logger.With(zap.String("job_id", string(j.ID)))
	log.Info("Job started", zap.Int("plans", j.Total))

	for start := 0; start < len(j.plans); start += jr.cfg.ChunkSize {
		if j.ctx.Err() != nil {
			break
		}
		end := min(start+jr.cfg.ChunkSize, len(j.plans))

		reqs := make([]timeoff.Request, 0, end-start)
		for _, p := range j.plans[start:end] {
			reqs = append(reqs, p.Request)
		}
		results := jr.planner.PlanAll(j.ctx, reqs, jr.cfg.PlanWorkers)

		items := make([]JobItem, 0, len(results))
		for _, res := range results {
			plan := j.plans[start+res.Index]
			if res.Err != nil && j.ctx.Err() != nil {
				continue
			}
			item := JobItem{Index: start + res.Index, Name: plan.JSON.Name, Err: res.Err}
			if res.Err == nil {
				item.TotalRestDays = res.Result.TotalRestDays
				item.UsedLeave = res.Result.UsedLeaveDays
				item.Score = res.Result.Score
				if j.Save {
					rec, _, err := NewPlanRecord(jr.factory, plan.Request, plan.JSON.Name, res.Result, jr.now())
					if err == nil {
						err = jr.store.SavePlan(j.ctx, rec)
					}
					if err != nil {
						log.Error("Failed to save plan", zap.Int("index", item.Index), zap.Error(err))
						jr.mu.Lock()
						j.Items = append(j.Items, items...)
						jr.finishLocked(j, JobFailed, fmt.Errorf("failed to save plan %d: %w", item.Index, err))
						jr.mu.Unlock()
						return
					}
					item.PlanID = rec.ID
				}
			}
			items = append(items, item)
		}

		jr.mu.Lock()
		for _, it := range items {
			j.Done++
			if it.Err != nil {
				j.Failed++
			}
		}
		j.Items = append(j.Items, items...)
		jr.mu.Unlock()

		log.Debug("Job progress", zap.Int("done", j.Done), zap.Int("total", j.Total))
	}

	jr.mu.Lock()
	defer jr.mu.Unlock()
	if j.ctx.Err() != nil && j.Done < j.Total {
		jr.finishLocked(j, JobCancelled, nil)
		return
	}
	jr.finishLocked(j, JobCompleted, nil)
}

// finishLocked moves a job to a terminal state. jr.mu must be held.
func (jr *JobRunner) finishLocked(j *job, status JobStatus, err error) {
	j.Status = status
	j.Err = err
	j.FinishedAt = jr.now()
	j.cancel()

	fields := []zap.Field{
		zap.String("job_id", string(j.ID)),
		zap.String("status", string(status)),
		zap.Int("done", j.Done),
		zap.Int("failed", j.Failed),
		zap.Int("total", j.Total),
	}
	if err != nil {
		jr.logger.Error("Job finished", append(fields, zap.Error(err))...)
		return
	}
	jr.logger.Info("Job finished", fields...)
}

func (j *job) snapshot() Job {
	out := j.Job
	out.Items = append([]JobItem(nil), j.Items...)
	return out
}

func toJobDTO(j Job) JobDTO {
	dto := JobDTO{
		ID:         string(j.ID),
		Status:     string(j.Status),
		Total:      j.Total,
		Done:       j.Done,
		Failed:     j.Failed,
		Save:       j.Save,
		CreatedAt:  formatTime(j.CreatedAt),
		StartedAt:  formatTime(j.StartedAt),
		FinishedAt: formatTime(j.FinishedAt),
	}
	if j.Err != nil {
		dto.Error = j.Err.Error()
	}
	for _, it := range j.Items {
		item := JobItemDTO{
			Index:         it.Index,
			Name:          it.Name,
			PlanID:        string(it.PlanID),
			TotalRestDays: it.TotalRestDays,
			UsedLeave:     toFloat(it.UsedLeave),
			Score:         it.Score,
		}
		if it.Err != nil {
			item.Error = it.Err.Error()
		}
		dto.Items = append(dto.Items, item)
	}
	return dto
}
