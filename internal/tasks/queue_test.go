package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	task   string
	reason string
	err    error
}

type recordingSink struct {
	mu      sync.Mutex
	reports []report
}

func (s *recordingSink) Report(_ context.Context, task, reason string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report{task: task, reason: reason, err: err})
}

func (s *recordingSink) all() []report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report(nil), s.reports...)
}

type ctxKey struct{}

func TestQueue_RunsTasksDetachedFromCancellation(t *testing.T) {
	sink := &recordingSink{}
	q := NewQueue(2, 4, sink)

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "req-1"))
	cancel()

	got := make(chan string, 1)
	ok := q.Submit(ctx, "email", func(ctx context.Context) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		got <- ctx.Value(ctxKey{}).(string)
		return nil
	})
	require.True(t, ok)

	select {
	case v := <-got:
		assert.Equal(t, "req-1", v)
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}

	require.NoError(t, q.Shutdown(context.Background()))
	assert.Empty(t, sink.all())
}

func TestQueue_ReportsErrorsAndPanics(t *testing.T) {
	sink := &recordingSink{}
	q := NewQueue(1, 4, sink)

	q.Submit(context.Background(), "failing", func(context.Context) error { return errors.New("smtp down") })
	q.Submit(context.Background(), "panicking", func(context.Context) error { panic("boom") })
	q.Submit(context.Background(), "fine", func(context.Context) error { return nil })

	require.NoError(t, q.Shutdown(context.Background()))

	reports := sink.all()
	require.Len(t, reports, 2)
	assert.Equal(t, "failing", reports[0].task)
	assert.Equal(t, "error", reports[0].reason)
	assert.ErrorContains(t, reports[0].err, "smtp down")
	assert.Equal(t, "panicking", reports[1].task)
	assert.Equal(t, "panic", reports[1].reason)
}

func TestQueue_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{}
	q := NewQueue(1, 1, sink)

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, q.Submit(context.Background(), "blocker", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	require.True(t, q.Submit(context.Background(), "buffered", func(context.Context) error { return nil }))
	assert.False(t, q.Submit(context.Background(), "overflow", func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, q.Shutdown(context.Background()))

	reports := sink.all()
	require.Len(t, reports, 1)
	assert.Equal(t, "overflow", reports[0].task)
	assert.ErrorIs(t, reports[0].err, ErrQueueFull)
}

func TestQueue_SubmitAfterShutdown(t *testing.T) {
	sink := &recordingSink{}
	q := NewQueue(1, 1, sink)
	require.NoError(t, q.Shutdown(context.Background()))
	require.NoError(t, q.Shutdown(context.Background()))

	assert.False(t, q.Submit(context.Background(), "late", func(context.Context) error { return nil }))
	reports := sink.all()
	require.Len(t, reports, 1)
	assert.ErrorIs(t, reports[0].err, ErrQueueClosed)
}

func TestQueue_ShutdownHonorsDeadline(t *testing.T) {
	q := NewQueue(1, 1, &recordingSink{})
	release := make(chan struct{})
	defer close(release)

	q.Submit(context.Background(), "slow", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Shutdown(ctx), context.DeadlineExceeded)
}
