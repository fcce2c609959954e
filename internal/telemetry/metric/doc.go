// Package metric provides Prometheus metrics for respkv.
//
//   - prometheus.go: Registry, the command, connection and expiry metrics
//   - collector.go: Collector, reporting key space size at scrape time
//
// Metrics are exposed at /metrics by the admin HTTP server.
package metric
