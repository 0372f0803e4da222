package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	tickInterval    = 1 * time.Minute
	jobFetchTimeout = 5 * time.Minute
)

// ScheduleTime is a wall-clock time of day at which a run fires.
type ScheduleTime struct {
	Hour   int
	Minute int
}

// String returns the time in HH:MM format.
func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// ParseScheduleTime parses a time string in HH:MM format.
func ParseScheduleTime(s string) (ScheduleTime, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return ScheduleTime{}, fmt.Errorf("invalid time format (expected HH:MM): %q", s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return ScheduleTime{}, fmt.Errorf("invalid hour in %q (must be 0-23)", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return ScheduleTime{}, fmt.Errorf("invalid minute in %q (must be 0-59)", s)
	}

	return ScheduleTime{Hour: hour, Minute: minute}, nil
}

// Config holds configuration for the scheduler.
type Config struct {
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
	JobProvider   func(context.Context) ([]Job, error)
}

// Scheduler fires the job provider at the configured times of day and
// hands the resulting jobs to a worker pool.
type Scheduler struct {
	pool         *WorkerPool
	times        []ScheduleTime
	runOnStartup bool
	jobProvider  func(context.Context) ([]Job, error)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	lastRun string
}

// New creates a scheduler with the given configuration.
func New(config Config) (*Scheduler, error) {
	if len(config.ScheduleTimes) == 0 {
		return nil, fmt.Errorf("at least one schedule time is required")
	}

	times := make([]ScheduleTime, len(config.ScheduleTimes))
	for i, raw := range config.ScheduleTimes {
		st, err := ParseScheduleTime(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schedule time %q: %w", raw, err)
		}
		times[i] = st
	}

	ctx, cancel := context.WithCancel(context.Background())
	log.Printf("Scheduler initialized with schedule times: %v", config.ScheduleTimes)

	return &Scheduler{
		pool:         NewWorkerPool(config.WorkerCount, config.JobDelay, config.QueueSize),
		times:        times,
		runOnStartup: config.RunOnStartup,
		jobProvider:  config.JobProvider,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Start launches the scheduler and worker pool.
func (s *Scheduler) Start() {
	s.pool.Start()

	if s.runOnStartup {
		log.Println("Scheduler: Running initial job batch on startup")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runJobs()
		}()
	}

	s.wg.Add(1)
	go s.tick()

	log.Println("Scheduler started")
}

func (s *Scheduler) tick() {
	defer s.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			if !s.shouldRun(now) {
				continue
			}
			log.Printf("Scheduler: Triggered at %s", now.Format("15:04"))
			s.runJobs()
		}
	}
}

// shouldRun reports whether now matches a schedule time that has not fired
// yet this minute. The lastRun key makes the check idempotent within a minute.
func (s *Scheduler) shouldRun(now time.Time) bool {
	key := now.Format("2006-01-02-15:04")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastRun == key {
		return false
	}

	for _, st := range s.times {
		if st.Hour == now.Hour() && st.Minute == now.Minute() {
			s.lastRun = key
			return true
		}
	}
	return false
}

func (s *Scheduler) runJobs() {
	if s.jobProvider == nil {
		log.Println("Scheduler: No job provider configured")
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, jobFetchTimeout)
	defer cancel()

	jobs, err := s.jobProvider(ctx)
	switch {
	case err != nil:
		log.Printf("Scheduler: Failed to fetch jobs: %v", err)
	case len(jobs) == 0:
		log.Println("Scheduler: No jobs to process")
	default:
		s.pool.SubmitBatch(jobs)
	}
}

// TriggerNow manually triggers a job run immediately.
func (s *Scheduler) TriggerNow() {
	log.Println("Scheduler: Manual trigger")
	go s.runJobs()
}

// Shutdown gracefully stops the scheduler and worker pool.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	log.Println("Scheduler: Initiating graceful shutdown...")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Println("Scheduler: Timeout waiting for scheduler loop to stop")
	}

	s.pool.ShutdownWithTimeout(timeout)
	log.Println("Scheduler: Shutdown complete")
}
