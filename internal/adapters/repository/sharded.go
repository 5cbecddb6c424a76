package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/okian/thrive/internal/domain/model"
	"github.com/okian/thrive/pkg/metrics"
)

const defaultShardCount = 8

type shard struct {
	mu       sync.RWMutex
	profiles map[string]*model.Profile
}

// ShardedStore is an in-memory Store. Users are spread over shards by an
// FNV-1a hash of their id so writers for different users rarely contend.
type ShardedStore struct {
	shards     []*shard
	shardCount int
	count      atomic.Int64
}

// NewShardedStore creates an empty store.
func NewShardedStore(opts ...Option) *ShardedStore {
	s := &ShardedStore{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{profiles: make(map[string]*model.Profile)}
	}
	metrics.UpdateProfilesTotal(0)
	return s
}

func (s *ShardedStore) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[h.Sum32()%uint32(len(s.shards))] //nolint:gosec // shard count is small and positive
}

// Get returns a copy of the user's profile.
func (s *ShardedStore) Get(ctx context.Context, userID string) (model.Profile, error) {
	if err := ctx.Err(); err != nil {
		return model.Profile{}, err
	}
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	p, ok := sh.profiles[userID]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	return p.Clone(), nil
}

// Update applies fn atomically for one user.
func (s *ShardedStore) Update(ctx context.Context, userID string, fn UpdateFunc) (model.Profile, error) {
	if userID == "" {
		return model.Profile{}, ErrEmptyUserID
	}
	if err := ctx.Err(); err != nil {
		return model.Profile{}, err
	}

	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	var working model.Profile
	existing, ok := sh.profiles[userID]
	if ok {
		working = existing.Clone()
	} else {
		working = model.Profile{UserID: userID}
	}

	if err := fn(&working); err != nil {
		return model.Profile{}, err
	}
	working.UserID = userID

	stored := working.Clone()
	sh.profiles[userID] = &stored
	if !ok {
		metrics.UpdateProfilesTotal(int(s.count.Add(1)))
	}
	return working, nil
}

// Count returns the number of stored profiles.
func (s *ShardedStore) Count(_ context.Context) int {
	return int(s.count.Load())
}
