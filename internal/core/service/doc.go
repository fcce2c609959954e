// Package service implements command execution for respkv.
//
//   - executor.go: Executor, running parsed commands against a KeySpace
//   - sweeper.go: Sweeper, the optional background removal of expired keys
//
// The executor owns the clock: TTLs parsed as relative durations are
// resolved to absolute deadlines here, at execution time.
package service
