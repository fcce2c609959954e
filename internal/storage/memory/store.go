package memory

import (
	"context"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/pkg/cmap"
)

// Expiry paths reported to the ExpireObserver.
const (
	ExpiredLazy  = "lazy"
	ExpiredSweep = "sweep"
)

// Entry is a stored value with its optional deadline.
type Entry struct {
	Value string
	// ExpireAt is the absolute deadline in epoch milliseconds; 0 means the
	// entry never expires.
	ExpireAt int64
}

// ExpiredAt reports whether the entry is logically expired at nowMillis.
func (e Entry) ExpiredAt(nowMillis int64) bool {
	return e.ExpireAt != 0 && nowMillis > e.ExpireAt
}

// ExpireObserver is notified when expired entries are physically removed.
type ExpireObserver interface {
	ObserveExpired(path string, n int)
}

// Store is the shared key space.
type Store struct {
	entries  *cmap.Map[Entry]
	observer ExpireObserver
}

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shardCount int
	observer   ExpireObserver
}

// WithShardCount sets the number of key-space shards (power of two).
func WithShardCount(n int) Option {
	return func(o *storeOptions) {
		o.shardCount = n
	}
}

// WithExpireObserver registers an observer for purged entries.
func WithExpireObserver(obs ExpireObserver) Option {
	return func(o *storeOptions) {
		o.observer = obs
	}
}

// New creates an empty key space.
func New(opts ...Option) *Store {
	o := storeOptions{shardCount: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		entries:  cmap.New[Entry](cmap.WithShardCount(o.shardCount)),
		observer: o.observer,
	}
}

// Get returns the value stored under key if it is present and not expired
// at nowMillis.
func (s *Store) Get(_ context.Context, key string, nowMillis int64) (string, bool) {
	e, ok := s.entries.Get(key)
	if !ok {
		return "", false
	}
	if !e.ExpiredAt(nowMillis) {
		return e.Value, true
	}

	// The read lock is released by now. Purge under the write lock, but only
	// if the entry is still expired: a concurrent SET may have replaced it.
	if s.entries.DeleteIf(key, func(cur Entry) bool { return cur.ExpiredAt(nowMillis) }) {
		s.observe(ExpiredLazy, 1)
	}
	return "", false
}

// Set writes value under key when cond allows it, replacing any previous
// entry including its deadline. expireAt is an absolute epoch millisecond
// deadline, or 0 for no TTL. A logically expired entry counts as absent for
// the condition check. Set reports whether the write happened.
func (s *Store) Set(_ context.Context, key, value string, expireAt int64, cond domain.Condition, nowMillis int64) bool {
	op := s.entries.Compute(key, func(old Entry, loaded bool) (Entry, cmap.Op) {
		present := loaded && !old.ExpiredAt(nowMillis)
		if !cond.Allows(present) {
			return old, cmap.Keep
		}
		return Entry{Value: value, ExpireAt: expireAt}, cmap.Store
	})
	return op == cmap.Store
}

// Lookup returns the raw entry for key, expired or not. It never purges.
func (s *Store) Lookup(key string) (Entry, bool) {
	return s.entries.Get(key)
}

// DeleteExpired removes entries expired at nowMillis, visiting at most
// samplePerShard entries in each shard (all of them when <= 0). It returns
// the number of removed entries.
func (s *Store) DeleteExpired(_ context.Context, nowMillis int64, samplePerShard int) int {
	total := 0
	for i := 0; i < s.entries.ShardCount(); i++ {
		total += s.entries.SweepShard(i, samplePerShard, func(_ string, e Entry) bool {
			return e.ExpiredAt(nowMillis)
		})
	}
	if total > 0 {
		s.observe(ExpiredSweep, total)
	}
	return total
}

// Count returns the number of stored entries, including expired entries
// that have not been purged yet.
func (s *Store) Count() int {
	return s.entries.Count()
}

// ShardCount returns the number of key-space shards.
func (s *Store) ShardCount() int {
	return s.entries.ShardCount()
}

// Stats summarizes the key space at one instant.
type Stats struct {
	Keys     int `json:"keys"`
	Volatile int `json:"volatile"`
	Expired  int `json:"expired"`
}

// Stats walks every entry and counts those carrying a deadline and those
// already expired at nowMillis but not yet purged. Shards are visited one
// at a time, so the totals are not a snapshot.
func (s *Store) Stats(nowMillis int64) Stats {
	var st Stats
	s.entries.Range(func(_ string, e Entry) bool {
		st.Keys++
		if e.ExpireAt != 0 {
			st.Volatile++
		}
		if e.ExpiredAt(nowMillis) {
			st.Expired++
		}
		return true
	})
	return st
}

func (s *Store) observe(path string, n int) {
	if s.observer != nil {
		s.observer.ObserveExpired(path, n)
	}
}
