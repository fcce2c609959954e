// Package memory provides the in-memory key space of respkv.
//
// Every key maps to one Entry holding both the value and its optional
// absolute deadline, so a SET that changes both is a single atomic write.
// Entries are spread across the shards of a cmap.Map; each shard is guarded
// by its own RWMutex.
//
// Expiration is lazy: Get treats an entry whose deadline has passed as
// absent and then purges it through a separate write-lock acquisition,
// re-checking the deadline under that lock. DeleteExpired supports an
// optional background sweep without changing what clients observe.
package memory
