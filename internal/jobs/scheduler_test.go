package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_RejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(nil)
	err := s.Register("purge", "every day", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRegister_EmptyScheduleDisables(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.Register("purge", "", func(context.Context) error { return nil }))
	assert.Error(t, s.RunNow("purge"))
}

func TestRegister_Duplicate(t *testing.T) {
	s := NewScheduler(nil)
	task := func(context.Context) error { return nil }
	require.NoError(t, s.Register("purge", "0 3 * * *", task))
	assert.Error(t, s.Register("purge", "0 4 * * *", task))
}

func TestRunNow(t *testing.T) {
	s := NewScheduler(nil)
	var calls int32
	require.NoError(t, s.Register("audit-cleanup", "30 2 * * *", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("logged, not returned")
	}))

	require.NoError(t, s.RunNow("audit-cleanup"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Error(t, s.RunNow("missing"))
}

func TestNextAfterStart(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.Register("purge", "0 3 * * *", func(context.Context) error { return nil }))
	assert.True(t, s.Next("purge").IsZero())

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool { return !s.Next("purge").IsZero() }, time.Second, 10*time.Millisecond)
	assert.True(t, s.Next("unknown").IsZero())
}

func TestStopCancelsRunningTask(t *testing.T) {
	s := NewScheduler(nil)
	started := make(chan struct{})
	done := make(chan struct{})
	require.NoError(t, s.Register("slow", "* * * * *", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(done)
		return ctx.Err()
	}))

	go func() { _ = s.RunNow("slow") }()
	<-started
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task was not cancelled")
	}
}
