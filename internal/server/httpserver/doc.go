// Package httpserver provides the admin HTTP server of respkv.
//
// Endpoints:
//
//   - GET /health, GET /ready: liveness and readiness probes
//   - GET /version: build information
//   - GET /metrics: Prometheus exposition
//   - GET /admin/v1/status/summary, GET /admin/v1/keys/{key},
//     POST /admin/v1/gc/trigger: key space status, single key inspection
//     and an on-demand expiry sweep, guarded by an IP allowlist
//
// The RESP data path does not go through this server.
package httpserver
