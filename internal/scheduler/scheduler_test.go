package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	err   error
	delay time.Duration
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	time.Sleep(j.delay)
	return j.err
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("not a schedule", &countingJob{name: "x"})
	assert.Error(t, err)
	assert.Empty(t, s.Status())
}

func TestRunNow_RecordsStatus(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "ok"}
	failing := &countingJob{name: "broken", err: errors.New("boom")}

	require.NoError(t, s.AddJob("@hourly", job))
	require.NoError(t, s.RunNow(job))
	assert.EqualError(t, s.RunNow(failing), "boom")

	byName := map[string]JobStatus{}
	for _, st := range s.Status() {
		byName[st.Name] = st
	}

	assert.Equal(t, "@hourly", byName["ok"].Schedule)
	assert.Equal(t, 1, byName["ok"].Runs)
	assert.Empty(t, byName["ok"].LastError)
	assert.Equal(t, "boom", byName["broken"].LastError)
	assert.False(t, byName["broken"].LastRun.IsZero())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "tick"}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
