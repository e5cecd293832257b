// Package scheduler runs periodic background jobs for CoinPulse, such as
// keeping slow-changing dashboard responses warm in the cache.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job represents a scheduled job.
type Job struct {
	Name     string
	Schedule Schedule
	Handler  func(ctx context.Context) error
	// RunOnStart runs the job once when the scheduler starts.
	RunOnStart bool
	// Timeout bounds a single run. Zero means one minute.
	Timeout time.Duration

	LastRun time.Time
	NextRun time.Time
}

// Schedule defines when a job should run.
type Schedule struct {
	Type ScheduleType

	// For interval jobs
	Interval time.Duration

	// For daily jobs (UTC)
	Hour   int
	Minute int
}

// ScheduleType defines the type of schedule.
type ScheduleType string

const (
	ScheduleInterval ScheduleType = "interval"
	ScheduleDaily    ScheduleType = "daily"
)

// Scheduler runs registered jobs when they are due.
type Scheduler struct {
	jobs    []*Job
	jobsMux sync.RWMutex

	tick time.Duration
	now  func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that checks for due jobs every tick.
func NewScheduler(tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tick:   tick,
		now:    func() time.Time { return time.Now().UTC() },
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler.
func (s *Scheduler) AddJob(job *Job) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	job.NextRun = nextRun(job.Schedule, s.now())
	s.jobs = append(s.jobs, job)

	log.Info().
		Str("job", job.Name).
		Time("next_run", job.NextRun).
		Msg("Job registered")
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	log.Info().Int("jobs", len(s.jobs)).Msg("Starting scheduler")

	s.jobsMux.RLock()
	for _, job := range s.jobs {
		if job.RunOnStart {
			s.spawn(job)
		}
	}
	s.jobsMux.RUnlock()

	s.wg.Add(1)
	go s.jobLoop()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) jobLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRunJobs()
		}
	}
}

func (s *Scheduler) checkAndRunJobs() {
	now := s.now()

	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	for _, job := range s.jobs {
		if now.Before(job.NextRun) {
			continue
		}
		s.spawn(job)
		job.LastRun = now
		job.NextRun = nextRun(job.Schedule, now)

		log.Debug().
			Str("job", job.Name).
			Time("next_run", job.NextRun).
			Msg("Job scheduled for next run")
	}
}

func (s *Scheduler) spawn(job *Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runJob(job)
	}()
}

func (s *Scheduler) runJob(job *Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := job.Handler(ctx); err != nil {
		log.Error().Err(err).Str("job", job.Name).Msg("Job failed")
		return
	}
	log.Debug().Str("job", job.Name).Dur("took", time.Since(start)).Msg("Job completed")
}

// RunJobNow runs a job immediately by name.
func (s *Scheduler) RunJobNow(name string) error {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	for _, job := range s.jobs {
		if job.Name == name {
			s.spawn(job)
			return nil
		}
	}
	return fmt.Errorf("job %q not found", name)
}

// nextRun calculates the next run time of a schedule after now.
func nextRun(schedule Schedule, now time.Time) time.Time {
	switch schedule.Type {
	case ScheduleInterval:
		return now.Add(schedule.Interval)

	case ScheduleDaily:
		next := time.Date(now.Year(), now.Month(), now.Day(),
			schedule.Hour, schedule.Minute, 0, 0, time.UTC)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		return next

	default:
		return now.Add(time.Hour)
	}
}
