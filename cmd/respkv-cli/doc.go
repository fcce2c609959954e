// Package main provides the entry point for respkv-cli.
//
// The CLI talks to respkv-server over RESP. It runs one command per
// invocation or, without a command, an interactive REPL.
//
// Usage:
//
//	respkv-cli [global options] command [arguments]
//	respkv-cli -s 10.0.0.5:6379 set --px 1500 session-1 active
//	respkv-cli -o json get session-1
package main
