package queue

import (
	"context"
	"hash/fnv"

	"github.com/okian/thrive/internal/domain/model"
	"github.com/okian/thrive/pkg/metrics"
)

// Partitioned routes check-ins to one of several InMemoryQueues by user id,
// so one consumer per partition sees each user's check-ins in arrival order.
type Partitioned struct {
	parts []*InMemoryQueue
}

// NewPartitioned creates n partitions that share totalCapacity.
func NewPartitioned(n, totalCapacity int) *Partitioned {
	if n < 1 {
		n = 1
	}
	per := max(1, totalCapacity/n)
	p := &Partitioned{parts: make([]*InMemoryQueue, n)}
	for i := range p.parts {
		p.parts[i] = NewInMemoryQueue(WithCapacity(per))
	}
	metrics.UpdateQueueCapacity(per * n)
	return p
}

// Partitions returns the underlying queues.
func (p *Partitioned) Partitions() []*InMemoryQueue {
	return p.parts
}

// PartitionFor returns the index of the partition that owns userID.
func (p *Partitioned) PartitionFor(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(p.parts))) //nolint:gosec // partition count is small and positive
}

// Enqueue adds c to its user's partition.
func (p *Partitioned) Enqueue(ctx context.Context, c model.CheckIn) error { //nolint:gocritic // hugeParam: passed by value into the channel
	err := p.parts[p.PartitionFor(c.UserID)].Enqueue(ctx, c)
	metrics.UpdateQueueSize(p.Len())
	return err
}

// Len returns the number of queued check-ins across partitions.
func (p *Partitioned) Len() int {
	n := 0
	for _, q := range p.parts {
		n += len(q.items)
	}
	return n
}

// Close closes every partition.
func (p *Partitioned) Close() error {
	for _, q := range p.parts {
		_ = q.Close()
	}
	return nil
}
