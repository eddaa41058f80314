package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

// maintenanceLog implements driven.MaintenanceLog.
type maintenanceLog struct {
	store *Store
}

var _ driven.MaintenanceLog = (*maintenanceLog)(nil)

const upsertSchedule = `
	INSERT INTO maintenance_jobs (job, every_ms, next_due_ms, failures)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(job) DO UPDATE SET
		every_ms = excluded.every_ms,
		next_due_ms = excluded.next_due_ms,
		failures = excluded.failures`

// Schedule returns the stored schedule of job, or nil when there is none.
func (l *maintenanceLog) Schedule(ctx context.Context, job domain.MaintenanceJob) (*domain.JobSchedule, error) {
	var everyMS, dueMS int64
	s := domain.JobSchedule{Job: job}
	err := l.store.db.QueryRowContext(ctx,
		"SELECT every_ms, next_due_ms, failures FROM maintenance_jobs WHERE job = ?", string(job),
	).Scan(&everyMS, &dueMS, &s.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s schedule: %w", domain.ErrStore, job, err)
	}

	s.Every = time.Duration(everyMS) * time.Millisecond
	s.NextDue = fromMillis(dueMS)
	return &s, nil
}

// PutSchedule creates or replaces a schedule.
func (l *maintenanceLog) PutSchedule(ctx context.Context, s domain.JobSchedule) error {
	if _, err := l.store.db.ExecContext(ctx, upsertSchedule, scheduleArgs(s)...); err != nil {
		return fmt.Errorf("%w: saving %s schedule: %w", domain.ErrStore, s.Job, err)
	}
	return nil
}

// Append inserts run, stores next and trims the job's history in one transaction.
func (l *maintenanceLog) Append(ctx context.Context, run domain.JobRun, next domain.JobSchedule, keep int) error {
	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO maintenance_runs (job, started_ms, finished_ms, orphans, error)
		VALUES (?, ?, ?, ?, ?)
	`, string(run.Job), run.Started.UnixMilli(), run.Finished.UnixMilli(), run.Orphans, run.Err); err != nil {
		return fmt.Errorf("%w: recording %s run: %w", domain.ErrStore, run.Job, err)
	}

	if _, err := tx.ExecContext(ctx, upsertSchedule, scheduleArgs(next)...); err != nil {
		return fmt.Errorf("%w: saving %s schedule: %w", domain.ErrStore, next.Job, err)
	}

	if keep > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM maintenance_runs
			WHERE job = ? AND id NOT IN (
				SELECT id FROM maintenance_runs WHERE job = ? ORDER BY id DESC LIMIT ?
			)
		`, string(run.Job), string(run.Job), keep); err != nil {
			return fmt.Errorf("%w: trimming %s history: %w", domain.ErrStore, run.Job, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %w", domain.ErrStore, err)
	}
	return nil
}

// Runs returns up to limit runs of job, newest first.
func (l *maintenanceLog) Runs(ctx context.Context, job domain.MaintenanceJob, limit int) ([]domain.JobRun, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT started_ms, finished_ms, orphans, error
		FROM maintenance_runs
		WHERE job = ?
		ORDER BY id DESC
		LIMIT ?
	`, string(job), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s runs: %w", domain.ErrStore, job, err)
	}
	defer rows.Close()

	var runs []domain.JobRun
	for rows.Next() {
		var startedMS, finishedMS int64
		run := domain.JobRun{Job: job}
		if err := rows.Scan(&startedMS, &finishedMS, &run.Orphans, &run.Err); err != nil {
			return nil, fmt.Errorf("%w: scanning run: %w", domain.ErrStore, err)
		}
		run.Started = fromMillis(startedMS)
		run.Finished = fromMillis(finishedMS)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing %s runs: %w", domain.ErrStore, job, err)
	}
	return runs, nil
}

func scheduleArgs(s domain.JobSchedule) []any {
	return []any{string(s.Job), s.Every.Milliseconds(), s.NextDue.UnixMilli(), s.Failures}
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
