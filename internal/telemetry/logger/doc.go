// Package logger provides structured logging for respkv.
//
// It wraps log/slog:
//
//   - logger.go: Logger, level control and the process-wide default
//   - context.go: logger and connection ID propagation through context
//   - redact.go: masking of secrets and stored values in log attributes
//
// The level is held in a shared slog.LevelVar so it can be changed at
// runtime, for example when the configuration file is reloaded.
package logger
