// Package tasks runs best-effort background work on a bounded worker pool.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"auconnect/internal/middleware"
	"auconnect/internal/observability"

	"github.com/google/uuid"
)

// Task is a unit of background work. The context carries the submitter's
// values but not its cancellation.
type Task func(ctx context.Context) error

// ErrorSink receives failures of background tasks. Failures never reach the
// code that submitted the task.
type ErrorSink interface {
	Report(ctx context.Context, task, reason string, err error)
}

// LogSink logs task failures and counts them.
type LogSink struct {
	Logger *slog.Logger
}

// Report implements ErrorSink.
func (s LogSink) Report(ctx context.Context, task, reason string, err error) {
	logger := s.Logger
	if logger == nil {
		logger = middleware.Logger
	}
	observability.TaskFailures.WithLabelValues(task, reason).Inc()
	logger.ErrorContext(ctx, "background task failed",
		slog.String("task", task),
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
}

var (
	// ErrQueueFull is reported when a task is dropped because every slot is taken.
	ErrQueueFull = errors.New("task queue full")
	// ErrQueueClosed is reported when a task is submitted after Shutdown.
	ErrQueueClosed = errors.New("task queue closed")
)

type job struct {
	id   string
	name string
	ctx  context.Context
	fn   Task
}

// Queue is a fixed-size worker pool fed by a buffered channel. Submit never
// blocks: when the buffer is full the task is dropped and reported.
type Queue struct {
	jobs chan job
	sink ErrorSink
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts workers goroutines consuming a buffer of size tasks.
func NewQueue(workers, size int, sink ErrorSink) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	if sink == nil {
		sink = LogSink{}
	}

	q := &Queue{
		jobs: make(chan job, size),
		sink: sink,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Submit enqueues fn under name. It reports whether the task was accepted.
func (q *Queue) Submit(ctx context.Context, name string, fn Task) bool {
	ctx = context.WithoutCancel(ctx)

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.sink.Report(ctx, name, "closed", ErrQueueClosed)
		return false
	}

	select {
	case q.jobs <- job{id: uuid.NewString(), name: name, ctx: ctx, fn: fn}:
		return true
	default:
		q.sink.Report(ctx, name, "dropped", ErrQueueFull)
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish or for
// ctx to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.run(j)
	}
}

func (q *Queue) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			q.sink.Report(j.ctx, j.name, "panic", fmt.Errorf("task %s panicked: %v", j.id, r))
		}
	}()

	if err := j.fn(j.ctx); err != nil {
		q.sink.Report(j.ctx, j.name, "error", fmt.Errorf("task %s: %w", j.id, err))
	}
}
