package cmap

import (
	"math/rand/v2"
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// MaxShardCount bounds the shard count accepted by WithShardCount.
const MaxShardCount = 1 << 16

// Op tells Compute what to do with the value returned by its callback.
type Op int

const (
	// Keep leaves the shard untouched.
	Keep Op = iota
	// Store writes the returned value under the key.
	Store
	// Remove deletes the key.
	Remove
)

// Map is a concurrent-safe sharded map with string keys.
type Map[V any] struct {
	shards    []*shard[V]
	shardMask uint32
	seed      uint32
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// Option configures a Map.
type Option func(*options)

type options struct {
	shardCount int
	seed       uint32
	seeded     bool
}

// WithShardCount sets the number of shards. Values that are not a power of
// two, or fall outside (0, MaxShardCount], fall back to DefaultShardCount.
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// WithSeed fixes the hash seed. Tests use it for a deterministic layout.
func WithSeed(seed uint32) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// New creates a sharded map.
func New[V any](opts ...Option) *Map[V] {
	o := options{shardCount: DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}

	n := o.shardCount
	if n <= 0 || n > MaxShardCount || n&(n-1) != 0 {
		n = DefaultShardCount
	}
	if !o.seeded {
		o.seed = rand.Uint32()
	}

	m := &Map[V]{
		shards:    make([]*shard[V], n),
		shardMask: uint32(n - 1),
		seed:      o.seed,
	}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return m
}

// ShardCount returns the number of shards.
func (m *Map[V]) ShardCount() int {
	return len(m.shards)
}

// ShardIndex returns the index of the shard that owns key.
func (m *Map[V]) ShardIndex(key string) int {
	return int(murmur3.Sum32WithSeed([]byte(key), m.seed) & m.shardMask)
}

func (m *Map[V]) getShard(key string) *shard[V] {
	return m.shards[m.ShardIndex(key)]
}

// Get retrieves a value by key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.getShard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.items[key]
	return val, ok
}

// Set stores a key-value pair.
func (m *Map[V]) Set(key string, value V) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// Compute runs fn under the shard write lock with the current value (if
// any) and applies the returned Op. It returns the Op that was applied.
func (m *Map[V]) Compute(key string, fn func(old V, loaded bool) (V, Op)) Op {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	old, loaded := s.items[key]
	val, op := fn(old, loaded)
	switch op {
	case Store:
		s.items[key] = val
	case Remove:
		if loaded {
			delete(s.items, key)
		} else {
			op = Keep
		}
	}
	return op
}

// DeleteIf removes key when pred returns true for its current value.
func (m *Map[V]) DeleteIf(key string, pred func(V) bool) bool {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.items[key]
	if !ok || !pred(val) {
		return false
	}
	delete(s.items, key)
	return true
}

// SweepShard visits at most limit entries of shard i (all of them when
// limit <= 0) and deletes those for which pred returns true. Go map
// iteration order is randomized, so repeated calls sample different keys.
// It returns the number of deleted entries.
func (m *Map[V]) SweepShard(i, limit int, pred func(key string, value V) bool) int {
	if i < 0 || i >= len(m.shards) {
		return 0
	}
	s := m.shards[i]
	s.mu.Lock()
	defer s.mu.Unlock()

	visited, deleted := 0, 0
	for k, v := range s.items {
		if limit > 0 && visited >= limit {
			break
		}
		visited++
		if pred(k, v) {
			delete(s.items, k)
			deleted++
		}
	}
	return deleted
}

// Range iterates over all key-value pairs. The callback returns false to
// stop. Locks are taken shard by shard, so the view is not a snapshot.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Count returns the total number of items.
func (m *Map[V]) Count() int {
	count := 0
	for _, s := range m.shards {
		s.mu.RLock()
		count += len(s.items)
		s.mu.RUnlock()
	}
	return count
}
