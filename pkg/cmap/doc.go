// Package cmap provides a concurrent map keyed by string.
//
// Keys are spread over a power-of-two number of shards using MurmurHash3.
// Each shard owns a plain Go map guarded by its own RWMutex, so operations on
// different keys rarely contend and every operation on a single key is
// serialized by exactly one lock.
//
// Usage:
//
//	m := cmap.New[Entry](cmap.WithShardCount(32))
//	m.Set("key", e)
//	val, ok := m.Get("key")
//
// Read operations (Get, Range) take the shard read lock; mutations
// (Set, Compute, DeleteIf, SweepShard) take the shard write lock.
// Callbacks passed to Compute, DeleteIf and SweepShard run while that lock is
// held and must not call back into the same Map.
package cmap
