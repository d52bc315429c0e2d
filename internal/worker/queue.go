// Package worker runs user-triggered writes in the background so the HTTP
// surface answers immediately.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/metrics"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("worker queue closed")

// Job is one background write.
type Job func(ctx context.Context) error

type task struct {
	name string
	fn   Job
}

// Queue executes jobs one at a time in submission order. Failures are logged
// and counted; jobs are never retried.
type Queue struct {
	jobs       chan task
	logger     *zap.Logger
	metrics    *metrics.Metrics
	jobTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewQueue starts the worker goroutine.
func NewQueue(size int, logger *zap.Logger, m *metrics.Metrics) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 64
	}
	q := &Queue{
		jobs:       make(chan task, size),
		logger:     logger,
		metrics:    m,
		jobTimeout: 30 * time.Second,
		done:       make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit enqueues a job. It blocks only when the buffer is full.
func (q *Queue) Submit(name string, fn Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	q.jobs <- task{name: name, fn: fn}
	return nil
}

// Close stops accepting jobs and waits for queued ones to finish or ctx to end.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for t := range q.jobs {
		q.execute(t)
	}
}

func (q *Queue) execute(t task) {
	ctx, cancel := context.WithTimeout(context.Background(), q.jobTimeout)
	defer cancel()

	start := time.Now()
	err := t.fn(ctx)
	q.metrics.JobDone(t.name, err)
	if err != nil {
		q.logger.Error("background job failed", zap.String("job", t.name), zap.Error(err))
		return
	}
	q.logger.Debug("background job completed", zap.String("job", t.name), zap.Duration("duration", time.Since(start)))
}
