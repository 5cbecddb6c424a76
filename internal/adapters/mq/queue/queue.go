// Package queue buffers check-ins between the HTTP layer and the workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/thrive/internal/domain/model"
	"github.com/okian/thrive/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a check-in without blocking. It fails with ErrFull when
	// the buffer is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, c model.CheckIn) error

	// Dequeue returns the channel consumers read from. It is closed once
	// the queue is closed and drained.
	Dequeue() <-chan model.CheckIn

	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan model.CheckIn
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan model.CheckIn, q.capacity)

	return q
}

// Enqueue adds a check-in to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c model.CheckIn) error { //nolint:gocritic // hugeParam: passed by value into the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejected("context_cancelled")
		return err
	}

	select {
	case q.items <- c:
		metrics.RecordQueueEnqueue()
		return nil
	default:
		metrics.RecordQueueRejected("full")
		return ErrFull
	}
}

// Dequeue returns the receive side of the buffer.
func (q *InMemoryQueue) Dequeue() <-chan model.CheckIn {
	return q.items
}

// Len returns the current number of queued check-ins.
func (q *InMemoryQueue) Len() int {
	return len(q.items)
}

// Close stops accepting check-ins. Buffered items remain readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
