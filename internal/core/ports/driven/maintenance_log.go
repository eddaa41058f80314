package driven

import (
	"context"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// MaintenanceLog persists maintenance schedules and run history so that
// intervals and retry backoff survive restarts.
type MaintenanceLog interface {
	// Schedule returns the stored schedule of job, or nil when there is none.
	Schedule(ctx context.Context, job domain.MaintenanceJob) (*domain.JobSchedule, error)

	// PutSchedule creates or replaces a schedule.
	PutSchedule(ctx context.Context, schedule domain.JobSchedule) error

	// Append records a finished run and the schedule it produced in one
	// step, then trims the job's history to its newest keep runs.
	Append(ctx context.Context, run domain.JobRun, next domain.JobSchedule, keep int) error

	// Runs returns up to limit runs of job, newest first.
	Runs(ctx context.Context, job domain.MaintenanceJob, limit int) ([]domain.JobRun, error)
}
