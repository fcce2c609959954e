// Package main provides the entry point for respkv-server.
//
// The server keeps string keys in memory and serves them over a subset of
// the Redis protocol (PING, ECHO, GET, SET with EX/PX/NX/XX). An optional
// admin HTTP listener exposes health probes, Prometheus metrics and a few
// admin endpoints.
//
// Usage:
//
//	respkv-server [flags]
//	respkv-server -config /etc/respkv/config.yaml -env-file /etc/respkv/.env
//
// Configuration is layered: built-in defaults, then the .env file, then
// the YAML file, then RESPKV_* environment variables. The YAML file is
// watched and the log level follows it without a restart.
package main
