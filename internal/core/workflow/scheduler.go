package workflow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/utils"
)

// Job is one scheduled background task
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron expressions with a seconds field
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID // job name -> entry id
	jobsMux sync.RWMutex
	timeout time.Duration
}

// NewScheduler creates a scheduler whose job runs are cut off after timeout
func NewScheduler(timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:    make(map[string]cron.EntryID),
		timeout: timeout,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	utils.LogInfo("⏰ Scheduler started", utils.Fields{"jobs": s.Jobs()})
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	utils.LogInfo("✅ Scheduler stopped", nil)
}

// AddJob schedules job under name, replacing an earlier job with the same name.
// schedule is a 6-field cron expression, e.g. "0 0 3 * * *" for daily at 03:00.
func (s *Scheduler) AddJob(name string, schedule string, job Job) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}

	entryID, err := s.cron.AddFunc(schedule, func() { s.Run(name, job) })
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	utils.LogInfo("   ✅ Scheduled job", utils.Fields{"job": name, "schedule": schedule})
	return nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(name string) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}
}

// Jobs returns the scheduled job names, sorted
func (s *Scheduler) Jobs() []string {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one job now with the scheduler's timeout. Errors are logged, never returned.
func (s *Scheduler) Run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("💥 Job panicked", fmt.Errorf("%v", r), utils.Fields{"job": name})
		}
	}()

	if err := job(ctx); err != nil {
		utils.LogError("❌ Job failed", err, utils.Fields{
			"job":         name,
			"duration_ms": time.Since(started).Milliseconds(),
		})
		return
	}

	utils.LogInfo("✅ Job finished", utils.Fields{
		"job":         name,
		"duration_ms": time.Since(started).Milliseconds(),
	})
}
