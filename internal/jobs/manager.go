package jobs

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"swasthyaflow/pkg/logger"
)

// Job represents a periodic background task.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// AlignedJob is a job that runs at aligned wall-clock boundaries (e.g., on the hour).
type AlignedJob interface {
	Job
	AlignToInterval() bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLocation aligns jobs to boundaries in loc instead of UTC.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// Manager orchestrates the lifecycle of background jobs.
type Manager struct {
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    []Job
	started bool
	loc     *time.Location
	now     func() time.Time

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewManager creates a job manager bound to the provided context.
func NewManager(parent context.Context, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(parent)
	m := &Manager{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make([]Job, 0),
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a job to the manager.
func (m *Manager) Register(job Job) {
	if job == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

// Start launches all registered jobs.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	jobs := append([]Job(nil), m.jobs...)
	m.mu.Unlock()

	for _, job := range jobs {
		m.wg.Add(1)
		go m.runJob(job)
	}
}

// Stop signals all jobs to stop.
func (m *Manager) Stop() {
	m.cancel()
}

// Wait blocks until all jobs exit.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) runJob(job Job) {
	defer m.wg.Done()

	interval := job.Interval()
	if interval <= 0 {
		interval = time.Minute
	}

	alignedJob, shouldAlign := job.(AlignedJob)
	if shouldAlign && alignedJob.AlignToInterval() {
		// Wait until next aligned time before first run
		now := m.now()
		next := nextBoundary(now, interval, m.loc)
		waitDuration := next.Sub(now)

		logger.InfoCtx(m.ctx, "job %s will start at next aligned time: %v (in %v)", job.Name(), next.Format("15:04:05"), waitDuration)

		timer := time.NewTimer(waitDuration)
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			m.executeJob(job)
		}
	} else {
		// Run immediately once.
		m.executeJob(job)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.executeJob(job)
		}
	}
}

func (m *Manager) executeJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCtx(m.ctx, "background job %s panicked: %v\nstack:\n%s", job.Name(), r, string(debug.Stack()))
		}
	}()

	if err := job.Run(m.ctx); err != nil {
		logger.WarnCtx(m.ctx, "background job %s failed: %v", job.Name(), err)
	}
}

// nextBoundary returns the first multiple of interval after local midnight that is after now.
// Intervals of a day or longer align to the next midnight.
func nextBoundary(now time.Time, interval time.Duration, loc *time.Location) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if interval >= 24*time.Hour {
		return midnight.AddDate(0, 0, 1)
	}
	elapsed := local.Sub(midnight)
	return midnight.Add((elapsed/interval + 1) * interval)
}
