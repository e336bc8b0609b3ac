package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 64

type shard struct {
	mu        sync.Mutex
	responses map[string]Response
	locks     map[string]time.Time
}

// MemoryStore is a sharded mutex table. Each key maps to exactly one shard,
// so per-key operations are atomic without a process-wide lock.
type MemoryStore struct {
	shards      [shardCount]*shard
	responseTTL time.Duration
	lockTimeout time.Duration
	maxEntries  int
	entries     atomic.Int64
	now         func() time.Time
}

type MemoryOption func(*MemoryStore)

func WithResponseTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.responseTTL = ttl
	}
}

func WithLockTimeout(timeout time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.lockTimeout = timeout
	}
}

// WithMaxEntries caps the number of cached responses across the whole store.
// Zero means unbounded. A Save that takes the store past the cap evicts the
// oldest responses until it is back under it.
func WithMaxEntries(n int) MemoryOption {
	return func(s *MemoryStore) {
		s.maxEntries = max(0, n)
	}
}

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		responseTTL: DefaultResponseTTL,
		lockTimeout: DefaultLockTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.shards {
		s.shards[i] = &shard{
			responses: make(map[string]Response),
			locks:     make(map[string]time.Time),
		}
	}
	return s
}

func (s *MemoryStore) shardFor(key string) *shard {
	return s.shards[xxhash.Sum64String(key)%shardCount]
}

func (s *MemoryStore) Lookup(_ context.Context, key string) (Response, bool, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	resp, ok := sh.responses[key]
	if !ok {
		return Response{}, false, nil
	}
	if s.now().Sub(resp.CreatedAt) > s.responseTTL {
		delete(sh.responses, key)
		s.entries.Add(-1)
		return Response{}, false, nil
	}
	return resp.Clone(), true, nil
}

func (s *MemoryStore) TryAcquire(_ context.Context, key string) (bool, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := s.now()
	if acquiredAt, ok := sh.locks[key]; ok && now.Sub(acquiredAt) <= s.lockTimeout {
		return false, nil
	}

	sh.locks[key] = now
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.locks, key)
	return nil
}

func (s *MemoryStore) Save(_ context.Context, key string, resp Response) error {
	resp = resp.Clone()
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = s.now()
	}

	sh := s.shardFor(key)
	sh.mu.Lock()
	if _, exists := sh.responses[key]; !exists {
		s.entries.Add(1)
	}
	sh.responses[key] = resp
	sh.mu.Unlock()

	for s.maxEntries > 0 && s.entries.Load() > int64(s.maxEntries) {
		if !s.evictOldest() {
			break
		}
	}
	return nil
}

func (s *MemoryStore) SweepExpired(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := s.now()

	for _, sh := range s.shards {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sh.mu.Lock()
		for key, resp := range sh.responses {
			if now.Sub(resp.CreatedAt) > s.responseTTL {
				delete(sh.responses, key)
				s.entries.Add(-1)
				result.Responses++
			}
		}
		for key, acquiredAt := range sh.locks {
			if now.Sub(acquiredAt) > s.lockTimeout {
				delete(sh.locks, key)
				result.Locks++
			}
		}
		sh.mu.Unlock()
	}

	return result, nil
}

// Len returns the number of cached responses and held locks.
func (s *MemoryStore) Len() (responses, locks int) {
	for _, sh := range s.shards {
		sh.mu.Lock()
		responses += len(sh.responses)
		locks += len(sh.locks)
		sh.mu.Unlock()
	}
	return responses, locks
}

// evictOldest removes the oldest cached response in the store. Shards are
// locked one at a time, so a concurrent Save may win the race for the chosen
// entry; the caller re-checks the count and tries again. It reports false
// when there is nothing left to evict.
func (s *MemoryStore) evictOldest() bool {
	var (
		victim   *shard
		key      string
		oldestAt time.Time
	)
	for _, sh := range s.shards {
		sh.mu.Lock()
		for k, resp := range sh.responses {
			if victim == nil || resp.CreatedAt.Before(oldestAt) {
				victim, key, oldestAt = sh, k, resp.CreatedAt
			}
		}
		sh.mu.Unlock()
	}
	if victim == nil {
		return false
	}

	victim.mu.Lock()
	defer victim.mu.Unlock()
	if resp, ok := victim.responses[key]; ok && resp.CreatedAt.Equal(oldestAt) {
		delete(victim.responses, key)
		s.entries.Add(-1)
	}
	return true
}
