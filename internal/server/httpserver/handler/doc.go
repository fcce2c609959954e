// Package handler provides the admin HTTP endpoints of respkv.
//
//   - health.go: liveness, readiness and version
//   - admin.go: key space summary, single key inspection and on-demand
//     expiry sweep
//
// JSON responses share the Response envelope; /metrics is served as-is by
// the Prometheus handler.
package handler
