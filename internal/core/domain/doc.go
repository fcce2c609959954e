// Package domain defines the command, reply and error model of respkv.
//
// The package is pure: no IO, no clock, no shared state.
//
//   - command.go: the Command union (Ping, Echo, Get, Set, Exit) and SET options
//   - parse.go: Parse, turning decoded tokens into a Command
//   - reply.go: the Reply union (simple string, nil bulk, error)
//   - errors.go: coded protocol errors
//
// TTLs stay relative here; the executor resolves them to absolute deadlines.
package domain
