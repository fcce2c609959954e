// Package command provides CLI command definitions for respkv-cli.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode and interactive REPL mode:
//
//	respkv-cli set --ex 60 greeting hello
//	respkv-cli get greeting
//	respkv-cli PING              # raw tokens are sent as-is
//	respkv-cli                   # no arguments starts the REPL
package command
