package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
	"github.com/learnbox/learnbox-search/internal/logger"
)

// Ensure Maintenance implements the interface.
var _ driving.Maintenance = (*Maintenance)(nil)

const (
	// historyRetention is how many runs are kept per job.
	historyRetention = 100

	// pollInterval is how often the loop checks whether a job is due.
	pollInterval = time.Minute
)

// reconcileRunner is satisfied by *Reconciler.
type reconcileRunner interface {
	Run(ctx context.Context) (int, error)
}

// Maintenance runs the reconciler on its schedule and records every run.
// Runs never overlap, whether started by the loop or by Reconcile.
type Maintenance struct {
	settings   domain.ReconcileSettings
	log        driven.MaintenanceLog
	reconciler reconcileRunner
	poll       time.Duration
	now        func() time.Time

	runMu sync.Mutex

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

// NewMaintenance creates the maintenance service.
func NewMaintenance(settings domain.ReconcileSettings, log driven.MaintenanceLog, reconciler reconcileRunner) *Maintenance {
	return &Maintenance{
		settings:   settings,
		log:        log,
		reconciler: reconciler,
		poll:       pollInterval,
		now:        time.Now,
	}
}

// Start blocks until ctx is cancelled, returning its error, or until Stop is
// called, returning nil. Calling Start while it is already running is a no-op.
func (m *Maintenance) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.done != nil {
		m.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel, m.done, m.stopped = cancel, done, false
	m.mu.Unlock()

	defer func() {
		cancel()
		m.mu.Lock()
		m.cancel, m.done = nil, nil
		m.mu.Unlock()
		close(done)
	}()

	if m.settings.Enabled {
		m.loop(runCtx)
	} else {
		logger.Debug("maintenance: reconcile disabled")
		<-runCtx.Done()
	}

	m.mu.Lock()
	stopped := m.stopped
	m.mu.Unlock()
	if stopped {
		return nil
	}
	return ctx.Err()
}

// Stop cancels a running Start and waits for it to return.
func (m *Maintenance) Stop() error {
	m.mu.Lock()
	if m.done == nil {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	m.cancel()
	done := m.done
	m.mu.Unlock()

	<-done
	return nil
}

// Reconcile runs reconciliation now. The returned error is the reconciler's,
// and the run is recorded either way.
func (m *Maintenance) Reconcile(ctx context.Context) (*domain.JobRun, error) {
	schedule, err := m.schedule(ctx)
	if err != nil {
		return nil, err
	}

	run := m.run(ctx, *schedule)
	if !run.OK() {
		return &run, fmt.Errorf("reconcile: %s", run.Err)
	}
	return &run, nil
}

// History returns up to limit recent reconcile runs, newest first.
func (m *Maintenance) History(ctx context.Context, limit int) ([]domain.JobRun, error) {
	if limit <= 0 {
		limit = historyRetention
	}
	return m.log.Runs(ctx, domain.JobReconcile, limit)
}

func (m *Maintenance) loop(ctx context.Context) {
	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		m.runIfDue(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Maintenance) runIfDue(ctx context.Context) {
	schedule, err := m.schedule(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("maintenance: loading schedule: %v", err)
		}
		return
	}
	if schedule.Due(m.now()) {
		m.run(ctx, *schedule)
	}
}

// schedule loads the reconcile schedule, creating it on first use and
// restarting the interval when the configured one changed.
func (m *Maintenance) schedule(ctx context.Context) (*domain.JobSchedule, error) {
	stored, err := m.log.Schedule(ctx, domain.JobReconcile)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.Every == m.settings.Interval {
		return stored, nil
	}

	fresh := domain.NewJobSchedule(domain.JobReconcile, m.settings.Interval, m.now())
	if stored != nil {
		logger.Debug("maintenance: reconcile interval changed from %s to %s", stored.Every, fresh.Every)
		fresh.Failures = stored.Failures
	}
	if err := m.log.PutSchedule(ctx, fresh); err != nil {
		return nil, err
	}
	return &fresh, nil
}

func (m *Maintenance) run(ctx context.Context, schedule domain.JobSchedule) domain.JobRun {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	run := domain.JobRun{Job: schedule.Job, Started: m.now()}
	orphans, err := m.reconciler.Run(ctx)
	run.Finished = m.now()
	run.Orphans = orphans
	if err != nil {
		run.Err = err.Error()
	}

	next := schedule.Advance(run)
	if err != nil {
		logger.Warn("maintenance: reconcile failed, retrying in %s: %v", next.NextDue.Sub(run.Finished), err)
	} else {
		logger.Debug("maintenance: reconcile took %s, %d orphans", run.Took(), run.Orphans)
	}

	// Record even when ctx was cancelled during the run.
	if err := m.log.Append(context.WithoutCancel(ctx), run, next, historyRetention); err != nil {
		logger.Error("maintenance: recording run: %v", err)
	}
	return run
}
