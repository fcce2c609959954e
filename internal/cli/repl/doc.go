// Package repl provides the interactive mode of respkv-cli.
//
// Each input line is split into words (double and single quotes group
// words, backslash escapes inside double quotes), sent as one RESP command
// and the reply is printed with the configured formatter. "help" lists the
// commands, "exit" or "quit" ends the session.
package repl
