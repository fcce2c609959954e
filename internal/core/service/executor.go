package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// ErrCloseConnection is returned by Execute for domain.Exit. It is a
// signal to the connection loop, not a failure.
var ErrCloseConnection = errors.New("service: close connection")

// KeySpace is the storage the executor runs against.
type KeySpace interface {
	// Get returns the value under key if present and not expired at nowMillis.
	Get(ctx context.Context, key string, nowMillis int64) (string, bool)

	// Set writes value under key if cond allows it, replacing the previous
	// entry and deadline. expireAt is 0 for no TTL.
	Set(ctx context.Context, key, value string, expireAt int64, cond domain.Condition, nowMillis int64) bool
}

// Clock returns the current time in epoch milliseconds.
type Clock func() int64

// SystemClock reads the wall clock.
func SystemClock() int64 {
	return time.Now().UnixMilli()
}

// CommandRecorder receives one observation per handled command.
type CommandRecorder interface {
	ObserveCommand(command, result string, elapsed time.Duration)
}

// Executor runs commands against a KeySpace.
type Executor struct {
	ks       KeySpace
	clock    Clock
	recorder CommandRecorder
	logger   *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock replaces the wall clock.
func WithClock(c Clock) ExecutorOption {
	return func(e *Executor) {
		e.clock = c
	}
}

// WithRecorder sets the command metrics recorder.
func WithRecorder(r CommandRecorder) ExecutorOption {
	return func(e *Executor) {
		e.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// NewExecutor creates an Executor over ks.
func NewExecutor(ks KeySpace, opts ...ExecutorOption) *Executor {
	e := &Executor{
		ks:     ks,
		clock:  SystemClock,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle parses tokens and executes the resulting command. Parse errors
// become error replies; the only error returned is ErrCloseConnection.
func (e *Executor) Handle(ctx context.Context, tokens []string) (domain.Reply, error) {
	start := time.Now()

	cmd, err := domain.Parse(tokens)
	if err != nil {
		reply := domain.ReplyFromError(err)
		e.record(commandLabel(tokens), reply, start)
		e.logger.Debug("command rejected",
			"conn_id", logger.ConnIDFromContext(ctx),
			"error", err,
			"kind", domain.ErrorKind(err))
		return reply, nil
	}

	reply, err := e.Execute(ctx, cmd)
	if err != nil {
		return reply, err
	}
	e.record(cmd.Name(), reply, start)
	return reply, nil
}

// Execute runs a parsed command.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command) (domain.Reply, error) {
	switch c := cmd.(type) {
	case domain.Exit:
		return domain.Reply{}, ErrCloseConnection
	case domain.Ping:
		return domain.ReplyPong, nil
	case domain.Echo:
		return domain.SimpleString(c.Message), nil
	case domain.Get:
		return e.get(ctx, c), nil
	case domain.Set:
		return e.set(ctx, c), nil
	default:
		return domain.ReplyFromError(fmt.Errorf("unsupported command %T", cmd)), nil
	}
}

func (e *Executor) get(ctx context.Context, c domain.Get) domain.Reply {
	v, ok := e.ks.Get(ctx, c.Key, e.clock())
	if !ok {
		return domain.BulkNil()
	}
	return domain.SimpleString(v)
}

func (e *Executor) set(ctx context.Context, c domain.Set) domain.Reply {
	now := e.clock()

	var expireAt int64
	if c.Expiry != nil {
		expireAt = c.Expiry.Deadline(now)
	}

	if !e.ks.Set(ctx, c.Key, c.Value, expireAt, c.Condition, now) {
		return domain.BulkNil()
	}
	return domain.ReplyOK
}

func (e *Executor) record(command string, reply domain.Reply, start time.Time) {
	if e.recorder == nil {
		return
	}
	e.recorder.ObserveCommand(command, reply.Kind.String(), time.Since(start))
}

// commandLabel keeps metric label cardinality bounded: unknown verbs are
// folded into a single label.
func commandLabel(tokens []string) string {
	if len(tokens) == 0 {
		return "unknown"
	}
	switch verb := strings.ToLower(tokens[0]); verb {
	case "ping", "echo", "get", "set":
		return verb
	default:
		return "unknown"
	}
}
