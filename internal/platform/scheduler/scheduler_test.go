package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-feeding/internal/platform/logger"
)

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Run() error {
	j.runs++
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func TestAddJob_ValidatesSchedule(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob("@daily", &countingJob{}))
	require.NoError(t, s.AddJob("0 3 * * *", &countingJob{}))
	assert.Error(t, s.AddJob("every tuesday", &countingJob{}))
	assert.Equal(t, 2, s.Entries())
}

func TestRunNow(t *testing.T) {
	s := New(logger.Nop())

	ok := &countingJob{}
	require.NoError(t, s.RunNow(ok))
	assert.Equal(t, 1, ok.runs)

	failing := &countingJob{err: errors.New("boom")}
	assert.EqualError(t, s.RunNow(failing), "boom")
}

func TestStartStop(t *testing.T) {
	s := New(logger.Nop())
	s.Start()
	s.Stop()
}
