// Package scheduler runs named interval jobs on robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/saadjs/gonext/internal/logger"
)

// JobStatus is the last known state of a job.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
)

// JobInfo is a serializable view of a registered job.
type JobInfo struct {
	Name      string     `json:"name"`
	Interval  string     `json:"interval"`
	Status    JobStatus  `json:"status"`
	Runs      int        `json:"runs"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
	NextRunAt *time.Time `json:"nextRunAt,omitempty"`
}

type job struct {
	id       cron.EntryID
	interval time.Duration
	status   JobStatus
	runs     int
	lastRun  *time.Time
}

// Scheduler wraps a cron instance. Overlapping runs of the same job are
// skipped.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	adapter := logger.NewCronAdapter(log)
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		log:  log.Named("scheduler"),
		jobs: map[string]*job{},
	}
}

// Every registers fn under name to run once per interval. Names are unique.
func (s *Scheduler) Every(interval time.Duration, name string, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("job %q: interval must be positive", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}
	j := &job{interval: interval, status: StatusIdle}
	id, err := s.cron.AddFunc("@every "+interval.String(), func() { s.run(name, j, fn) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", name, err)
	}
	j.id = id
	s.jobs[name] = j
	s.log.Debug("job registered", zap.String("job", name), zap.Duration("interval", interval))
	return nil
}

// RunNow executes a registered job synchronously.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	entry := s.cron.Entry(j.id)
	if entry.Job == nil {
		return fmt.Errorf("job %q has no entry", name)
	}
	entry.Job.Run()
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs or ctx, whichever ends
// first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs lists registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.jobs))
	for name, j := range s.jobs {
		info := JobInfo{
			Name:      name,
			Interval:  j.interval.String(),
			Status:    j.status,
			Runs:      j.runs,
			LastRunAt: j.lastRun,
		}
		if next := s.cron.Entry(j.id).Next; !next.IsZero() {
			info.NextRunAt = &next
		}
		out = append(out, info)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func (s *Scheduler) run(name string, j *job, fn func()) {
	now := time.Now()
	s.mu.Lock()
	j.status = StatusRunning
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		j.status = StatusDone
		j.runs++
		j.lastRun = &now
		s.mu.Unlock()
	}()
	s.log.Debug("job started", zap.String("job", name))
	fn()
}
