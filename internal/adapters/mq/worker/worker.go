// Package worker applies queued check-ins to user profiles.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/thrive/internal/domain/model"
	"github.com/okian/thrive/pkg/logger"
	"github.com/okian/thrive/pkg/metrics"
)

// Processor applies one check-in.
type Processor interface {
	Process(ctx context.Context, c model.CheckIn) error
}

// Queue defines how workers receive check-ins.
type Queue interface {
	Dequeue() <-chan model.CheckIn
}

// InMemoryWorker reads check-ins off the queue until it is closed and drained,
// the context is cancelled or Stop is called.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, processor Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		processor: processor,
		name:      "worker",
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case c, ok := <-items:
			if !ok {
				return
			}
			w.handle(ctx, c)
		}
	}
}

// Stop asks the worker to return without draining the queue.
func (w *InMemoryWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Wait blocks until Run returns or ctx expires.
func (w *InMemoryWorker) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker %s: %w", w.name, ctx.Err())
	}
}

func (w *InMemoryWorker) handle(ctx context.Context, c model.CheckIn) { //nolint:gocritic // hugeParam: received by value from the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.processor.Process(ctx, c); err != nil {
		metrics.RecordCheckInError("process")
		w.logger.Error(ctx, "check-in failed",
			logger.String("checkin_id", c.ID),
			logger.String("user_id", c.UserID),
			logger.Error(err),
		)
	}
}

// Pool runs one worker per source queue.
type Pool struct {
	workers []*InMemoryWorker
	sources []Queue
	logger  logger.Logger
}

// NewPool creates a worker for each source.
func NewPool(sources []Queue, processor Processor) *Pool {
	p := &Pool{
		workers: make([]*InMemoryWorker, len(sources)),
		sources: sources,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i, src := range sources {
		p.workers[i] = NewInMemoryWorker(src, processor, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(len(sources))
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop stops all workers without draining and waits for them to return.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.Stop()
	}
	for _, w := range p.workers {
		<-w.done
	}
}

// Shutdown closes the sources, lets the workers drain them and waits until
// they return or ctx expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	for _, src := range p.sources {
		if closer, ok := src.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(err))
			}
		}
	}

	for i, w := range p.workers {
		if err := w.Wait(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return err
		}
	}
	return nil
}
