package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"github.com/sjperalta/fintera-obligations/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex

	cron      *cron.Cron
	schedules map[cron.EntryID]string
	cronMu    sync.Mutex
}

// WorkerStats holds statistics about the worker.
// CompletedJobs counts every finished job; FailedJobs is the failing subset.
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// ScheduleInfo describes a registered cron job
type ScheduleInfo struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run,omitempty"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		// due dates are UTC calendar dates, so schedules are evaluated in UTC too
		cron:      cron.New(cron.WithLocation(time.UTC)),
		schedules: make(map[cron.EntryID]string),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}
	w.cron.Start()

	return w
}

// Enqueue adds a job to be processed by the worker pool
func (w *Worker) Enqueue(name string, job Job) {
	select {
	case w.queue <- w.named(name, job):
	default:
		logger.Warn("[Worker] Queue full, running job synchronously", "job", name)
		w.run("[Worker]", name, job)
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(name string, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.run("[Worker]", name, job)
	}()
}

// ScheduleCron registers a job on a cron expression such as "@every 15m" or "0 2 * * *".
// Overlapping runs of the same job are skipped.
func (w *Worker) ScheduleCron(name, spec string, job Job) error {
	w.cronMu.Lock()
	defer w.cronMu.Unlock()

	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		w.run("[Scheduler]", name, job)
	}))

	id, err := w.cron.AddJob(spec, wrapped)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	w.schedules[id] = name
	logger.Info("[Scheduler] Job registered", "job", name, "spec", spec)
	return nil
}

// Schedules lists the registered cron jobs with their next run time
func (w *Worker) Schedules() []ScheduleInfo {
	w.cronMu.Lock()
	defer w.cronMu.Unlock()

	entries := w.cron.Entries()
	infos := make([]ScheduleInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, ScheduleInfo{
			Name:    w.schedules[entry.ID],
			NextRun: entry.Next,
			LastRun: entry.Prev,
		})
	}
	return infos
}

// named tags a queued job with its name for logging
func (w *Worker) named(name string, job Job) Job {
	return func(ctx context.Context) error {
		w.run("[Worker]", name, job)
		return nil
	}
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			logger.Debug("[Worker] Picked up job", "worker", workerID)
			_ = job(w.ctx)
		}
	}
}

// run executes a job with stats tracking, panic recovery and error reporting
func (w *Worker) run(prefix, name string, job Job) {
	w.trackJobStart()
	defer w.trackJobEnd()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(prefix+" Job panic", "job", name, "panic", r)
			w.trackJobFailure()
			sentry.CurrentHub().Recover(r)
		}
	}()

	start := time.Now()
	if err := job(w.ctx); err != nil {
		logger.Error(prefix+" Job error", "job", name, "error", err)
		w.trackJobFailure()
		sentry.CaptureException(fmt.Errorf("job %s: %w", name, err))
		return
	}
	logger.Info(prefix+" Job completed", "job", name, "elapsed", time.Since(start))
}

// Shutdown stops the scheduler, waits for running jobs and stops all workers
func (w *Worker) Shutdown() {
	<-w.cron.Stop().Done()
	w.cancel()
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
