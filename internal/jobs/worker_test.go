package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_EnqueueRunsJobs(t *testing.T) {
	w := NewWorker(2)
	defer w.Shutdown()

	done := make(chan struct{})
	w.Enqueue("ok", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job did not run")
	}
	waitFor(t, func() bool { return w.GetStats().CompletedJobs == 1 })
	assert.Equal(t, int64(0), w.GetStats().FailedJobs)
}

func TestWorker_EnqueueAsyncTracksFailuresAndPanics(t *testing.T) {
	w := NewWorker(1)
	defer w.Shutdown()

	w.EnqueueAsync("fails", func(ctx context.Context) error { return errors.New("boom") })
	w.EnqueueAsync("panics", func(ctx context.Context) error { panic("kaboom") })

	waitFor(t, func() bool { return w.GetStats().CompletedJobs == 2 })
	stats := w.GetStats()
	assert.Equal(t, int64(2), stats.FailedJobs)
	assert.Equal(t, 0, stats.ActiveJobs)
	assert.Equal(t, 10, stats.MaxConcurrent)
}

func TestWorker_ScheduleCron(t *testing.T) {
	w := NewWorker(1)
	defer w.Shutdown()

	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, w.ScheduleCron("overdue-sweep", "@every 15m", noop))
	require.NoError(t, w.ScheduleCron("recurring-extension", "0 2 * * *", noop))
	assert.Error(t, w.ScheduleCron("broken", "not a cron spec", noop))

	schedules := w.Schedules()
	require.Len(t, schedules, 2)

	names := []string{schedules[0].Name, schedules[1].Name}
	assert.ElementsMatch(t, []string{"overdue-sweep", "recurring-extension"}, names)
	for _, s := range schedules {
		assert.True(t, s.NextRun.After(time.Now()))
	}
}

func TestWorker_ShutdownCancelsContext(t *testing.T) {
	w := NewWorker(1)
	w.Shutdown()

	select {
	case <-w.Context().Done():
	default:
		t.Fatal("context should be cancelled after shutdown")
	}
}
