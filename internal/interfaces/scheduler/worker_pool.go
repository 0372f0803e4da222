package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	jobTracer          = otel.Tracer("centavo/scheduler")
	jobMeter           = otel.Meter("centavo/scheduler")
	jobDuration, _     = jobMeter.Float64Histogram("scheduler.job.duration", metric.WithDescription("Job execution duration in seconds"), metric.WithUnit("s"))
	jobTotal, _        = jobMeter.Int64Counter("scheduler.job.total", metric.WithDescription("Total jobs executed by status"))
	jobQueueDropped, _ = jobMeter.Int64Counter("scheduler.job.queue_dropped", metric.WithDescription("Jobs dropped due to full queue"))
)

const jobTimeout = 120 * time.Second

// WorkerPool runs queued sync jobs on a fixed set of workers. jobDelay spaces
// consecutive jobs per worker to stay under provider rate limits.
type WorkerPool struct {
	workerCount int
	jobDelay    time.Duration
	queue       chan Job
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewWorkerPool(workerCount int, jobDelay time.Duration, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: workerCount,
		jobDelay:    jobDelay,
		queue:       make(chan Job, queueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start() {
	log.Printf("Worker pool: starting %d workers", wp.workerCount)
	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.drain(i)
	}
}

// drain consumes the queue until the pool is cancelled or the queue closes.
func (wp *WorkerPool) drain(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.queue:
			if !ok {
				return
			}
			wp.run(id, job)
			if !wp.pause() {
				return
			}
		}
	}
}

// pause sleeps for the configured inter-job delay. Returns false when the
// pool was cancelled during the sleep.
func (wp *WorkerPool) pause() bool {
	if wp.jobDelay <= 0 {
		return true
	}
	select {
	case <-time.After(wp.jobDelay):
		return true
	case <-wp.ctx.Done():
		return false
	}
}

func (wp *WorkerPool) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(wp.ctx, jobTimeout)
	defer cancel()

	ctx, span := jobTracer.Start(ctx, "job.execute",
		trace.WithAttributes(
			attribute.Int("worker.id", workerID),
			attribute.String("job.description", job.Description()),
			attribute.String("job.user_id", job.UserID()),
		),
	)
	defer span.End()

	log.Printf("Worker %d: %s", workerID, job.Description())
	start := time.Now()
	err := job.Execute(ctx)
	jobDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		log.Printf("Worker %d: %s failed: %v", workerID, job.Description(), err)
		return
	}
	jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))
}

// Submit queues a job without blocking. A full queue drops the job and
// returns an error; a dropped sync is picked up again on the next schedule.
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	case wp.queue <- job:
		return nil
	default:
		jobQueueDropped.Add(context.Background(), 1)
		return fmt.Errorf("job queue full, dropping job for user %s", job.UserID())
	}
}

// SubmitBatch queues each job, logging the ones that did not fit.
func (wp *WorkerPool) SubmitBatch(jobs []Job) {
	submitted := 0
	for _, job := range jobs {
		if err := wp.Submit(job); err != nil {
			log.Printf("Worker pool: could not submit job for user %s: %v", job.UserID(), err)
			continue
		}
		submitted++
	}
	log.Printf("Worker pool: submitted %d/%d jobs", submitted, len(jobs))
}

// ShutdownWithTimeout closes the queue and waits for in-flight jobs. When the
// timeout expires the pool context is cancelled, aborting whatever remains.
func (wp *WorkerPool) ShutdownWithTimeout(timeout time.Duration) {
	close(wp.queue)

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Worker pool: drained")
	case <-time.After(timeout):
		log.Println("Worker pool: shutdown timeout, aborting remaining jobs")
	}

	wp.cancel()
}
