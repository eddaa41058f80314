package domain

import "time"

// MaintenanceJob identifies a recurring background job.
type MaintenanceJob string

// JobReconcile devectorizes indexed documents that left the catalogue.
const JobReconcile MaintenanceJob = "reconcile"

// firstRetry is the delay after the first failed run.
const firstRetry = time.Minute

// JobSchedule is the persisted schedule of a maintenance job.
type JobSchedule struct {
	Job     MaintenanceJob
	Every   time.Duration
	NextDue time.Time

	// Failures counts consecutive failed runs.
	Failures int
}

// NewJobSchedule returns a schedule whose first run is one interval after now.
func NewJobSchedule(job MaintenanceJob, every time.Duration, now time.Time) JobSchedule {
	return JobSchedule{Job: job, Every: every, NextDue: now.Add(every)}
}

// Due reports whether the job should run at now.
func (s JobSchedule) Due(now time.Time) bool {
	return !now.Before(s.NextDue)
}

// Advance returns the schedule that follows run. A failed run is retried
// sooner, starting at one minute and doubling up to Every.
func (s JobSchedule) Advance(run JobRun) JobSchedule {
	if run.OK() {
		s.Failures = 0
		s.NextDue = run.Finished.Add(s.Every)
		return s
	}
	s.Failures++
	s.NextDue = run.Finished.Add(RetryDelay(s.Every, s.Failures))
	return s
}

// RetryDelay is the wait before retrying a job after failures consecutive
// failed runs. It never exceeds every.
func RetryDelay(every time.Duration, failures int) time.Duration {
	delay := firstRetry
	for i := 1; i < failures && delay < every; i++ {
		delay *= 2
	}
	return min(delay, every)
}

// JobRun is the outcome of one maintenance run.
type JobRun struct {
	Job      MaintenanceJob
	Started  time.Time
	Finished time.Time

	// Orphans is how many documents were scheduled for devectorization.
	Orphans int

	// Err is the failure message, empty on success.
	Err string
}

// OK reports whether the run succeeded.
func (r JobRun) OK() bool {
	return r.Err == ""
}

// Took returns how long the run lasted.
func (r JobRun) Took() time.Duration {
	return r.Finished.Sub(r.Started)
}
