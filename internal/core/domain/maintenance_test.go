package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobSchedule_Due(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewJobSchedule(JobReconcile, time.Hour, now)

	assert.Equal(t, now.Add(time.Hour), s.NextDue)
	assert.False(t, s.Due(now))
	assert.True(t, s.Due(now.Add(time.Hour)))
	assert.True(t, s.Due(now.Add(2*time.Hour)))
}

func TestJobSchedule_Advance(t *testing.T) {
	finished := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := JobSchedule{Job: JobReconcile, Every: time.Hour, Failures: 2}

	ok := s.Advance(JobRun{Finished: finished})
	assert.Zero(t, ok.Failures)
	assert.Equal(t, finished.Add(time.Hour), ok.NextDue)

	failed := JobSchedule{Job: JobReconcile, Every: time.Hour}.Advance(JobRun{Finished: finished, Err: "db down"})
	assert.Equal(t, 1, failed.Failures)
	assert.Equal(t, finished.Add(time.Minute), failed.NextDue)

	again := failed.Advance(JobRun{Finished: finished, Err: "db down"})
	assert.Equal(t, 2, again.Failures)
	assert.Equal(t, finished.Add(2*time.Minute), again.NextDue)
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		every    time.Duration
		failures int
		want     time.Duration
	}{
		{time.Hour, 1, time.Minute},
		{time.Hour, 3, 4 * time.Minute},
		{time.Hour, 7, time.Hour},
		{time.Hour, 50, time.Hour},
		{30 * time.Second, 1, 30 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RetryDelay(tt.every, tt.failures), "every=%v failures=%d", tt.every, tt.failures)
	}
}

func TestJobRun(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := JobRun{Job: JobReconcile, Started: start, Finished: start.Add(1500 * time.Millisecond)}

	assert.True(t, run.OK())
	assert.Equal(t, 1500*time.Millisecond, run.Took())

	run.Err = "boom"
	assert.False(t, run.OK())
}
