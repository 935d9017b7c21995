package tsched

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/robfig/cron/v3"
)

// cronRunner lazily starts a cron engine shared by all periodic entries
// of one scheduler. It exists so schedulers that never use periodic
// submission pay nothing for it.
type cronRunner struct {
	sched *Scheduler

	mu      sync.Mutex
	cron    *cron.Cron
	stopped bool
}

func newCronRunner(s *Scheduler) *cronRunner {
	return &cronRunner{sched: s}
}

func (c *cronRunner) add(spec string, fn func()) (cron.EntryID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return 0, ErrShuttingDown
	}
	if c.cron == nil {
		c.cron = cron.New()
		c.cron.Start()
	}
	return c.cron.AddFunc(spec, fn)
}

func (c *cronRunner) remove(id cron.EntryID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		c.cron.Remove(id)
	}
}

func (c *cronRunner) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.cron != nil {
		c.cron.Stop()
	}
}

// PeriodicEntry represents one registered recurring submission.
type PeriodicEntry struct {
	runner *cronRunner
	id     cron.EntryID
	once   sync.Once
}

// Stop deregisters the entry. Tasks already submitted by earlier ticks
// are unaffected. Idempotent.
func (e *PeriodicEntry) Stop() {
	e.once.Do(func() { e.runner.remove(e.id) })
}

// SubmitPeriodic registers a cron expression (standard 5-field spec, or
// descriptors like "@every 1m") that submits a fresh task on every tick.
// Each tick's task gets its own ID and handle; handles are discarded, so
// periodic work is observable through Metrics and the error callbacks.
// Periodic submission stops automatically at shutdown.
func (s *Scheduler) SubmitPeriodic(spec, name string, prio Priority, cfg TaskConfig, work WorkFunc) (*PeriodicEntry, error) {
	if work == nil {
		return nil, ErrNilWork
	}
	if !prio.Valid() {
		return nil, ErrInvalidPriority
	}
	id, err := s.cron.add(spec, func() {
		if _, err := s.TrySubmit(NewTask(name, work), prio, cfg); err != nil {
			lg.FromContext(context.Background()).Warn("periodic submission dropped",
				lg.String("task", name),
				lg.Any("error", err),
			)
			s.pool.reportInternalError(fmt.Errorf("periodic task %q: %w", name, err))
		}
	})
	if err != nil {
		if errors.Is(err, ErrShuttingDown) {
			return nil, err
		}
		return nil, fmt.Errorf("tsched: invalid cron spec %q: %w", spec, err)
	}
	return &PeriodicEntry{runner: s.cron, id: id}, nil
}
