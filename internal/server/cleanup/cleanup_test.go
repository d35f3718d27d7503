package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	err     error
	calls   []time.Time
	deleted int
	mu      sync.Mutex
}

func (f *fakePurger) DeleteExpiredTokens(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func (f *fakePurger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type countingRecorder struct {
	purged []int
}

func (r *countingRecorder) RecordTokensPurged(count int) {
	r.purged = append(r.purged, count)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJob_Run(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	purger := &fakePurger{deleted: 3}
	recorder := &countingRecorder{}

	job := NewJob(purger, recorder, discardLogger())
	job.now = func() time.Time { return fixed }

	deleted, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, deleted)
	assert.Equal(t, []time.Time{fixed}, purger.calls)
	assert.Equal(t, []int{3}, recorder.purged)
}

func TestJob_Run_Error(t *testing.T) {
	purger := &fakePurger{err: errors.New("database is locked")}
	recorder := &countingRecorder{}

	job := NewJob(purger, recorder, discardLogger())

	_, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Empty(t, recorder.purged)
}

func TestJob_Run_NilRecorder(t *testing.T) {
	job := NewJob(&fakePurger{deleted: 1}, nil, discardLogger())

	deleted, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestJob_Start(t *testing.T) {
	t.Run("runs immediately and stops", func(t *testing.T) {
		purger := &fakePurger{}
		job := NewJob(purger, nil, discardLogger())

		require.NoError(t, job.Start(context.Background(), "@hourly"))
		job.Stop()

		assert.Equal(t, 1, purger.callCount())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		purger := &fakePurger{}
		job := NewJob(purger, nil, discardLogger())

		err := job.Start(context.Background(), "every now and then")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid cleanup schedule")
		assert.Zero(t, purger.callCount())

		assert.NotPanics(t, job.Stop)
	})
}
