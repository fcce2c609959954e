package redisserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/core/service"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// Config holds the RESP server configuration.
type Config struct {
	// Address is the TCP listen address. Empty disables the server.
	Address string
	// ReadTimeout is the timeout for reading a command once its first byte
	// arrived (default: 30s). Helps prevent slowloris attacks.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the timeout for idle connections (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per IP.
	// Set to 0 to disable rate limiting.
	RateLimit int
	// Limits bounds incoming frames.
	Limits Limits
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		RateLimit:    0,
		Limits:       DefaultLimits(),
	}
}

// Handler turns one frame's tokens into a reply. Returning
// service.ErrCloseConnection ends the connection without a reply.
type Handler interface {
	Handle(ctx context.Context, tokens []string) (domain.Reply, error)
}

// ConnObserver receives connection lifecycle and protocol error events.
type ConnObserver interface {
	ConnOpened()
	ConnClosed()
	ProtocolError(kind string)
}

type nopObserver struct{}

func (nopObserver) ConnOpened()          {}
func (nopObserver) ConnClosed()          {}
func (nopObserver) ProtocolError(string) {}

// Option configures a Server.
type Option func(*Server)

// WithObserver sets the connection observer.
func WithObserver(o ConnObserver) Option {
	return func(s *Server) {
		if o != nil {
			s.observer = o
		}
	}
}

// Server accepts RESP connections and runs one goroutine per connection.
type Server struct {
	cfg      *Config
	handler  Handler
	observer ConnObserver
	limiter  *rateLimiter
	logger   *slog.Logger

	mu    sync.Mutex
	ln    net.Listener
	conns map[*Conn]struct{}

	running atomic.Bool
	closing atomic.Bool
	wg      sync.WaitGroup
}

// Conn represents a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer

	closed atomic.Bool
}

func newConn(c net.Conn) *Conn {
	return &Conn{
		id:      ulid.Make().String(),
		netConn: c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
	}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// New creates a RESP server dispatching frames to handler.
func New(cfg *Config, handler Handler, logger *slog.Logger, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		handler:  handler,
		observer: nopObserver{},
		limiter:  newRateLimiter(cfg.RateLimit),
		logger:   logger,
		conns:    make(map[*Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the TCP listener and serves connections in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.Address == "" {
		s.logger.Info("resp server disabled (no address)")
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln in the background. The server takes
// ownership of ln and closes it on Shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.running.Store(true)

	s.logger.Info("resp server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("resp server accept error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting, wakes idle connections and waits for them to
// finish. Connections still open when ctx expires are closed forcibly.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	s.closing.Store(true)

	var firstErr error

	s.mu.Lock()
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	for c := range s.conns {
		_ = c.netConn.SetReadDeadline(time.Now())
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.mu.Lock()
		for c := range s.conns {
			_ = c.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, newConn(c))
		}()
	}
}

func (s *Server) track(c *Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	s.track(c, true)
	defer s.track(c, false)
	defer c.Close()
	// Replies still buffered from a pipelined batch go out before close.
	defer func() {
		if c.bw.Buffered() > 0 {
			_ = s.flush(c)
		}
	}()

	s.observer.ConnOpened()
	defer s.observer.ConnClosed()

	ctx = logger.WithConnID(ctx, c.id)
	log := s.logger.With("conn_id", c.id, "remote", c.RemoteAddr().String())
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	var lim *rate.Limiter
	if s.limiter != nil {
		ip := remoteIP(c.RemoteAddr())
		lim = s.limiter.acquire(ip)
		defer s.limiter.release(ip)
	}

	readTimeout := orDefault(s.cfg.ReadTimeout, 30*time.Second)
	idleTimeout := orDefault(s.cfg.IdleTimeout, 5*time.Minute)

	for {
		// First byte: allow idle timeout (connection can stay idle between commands).
		if err := c.netConn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		// Checked after arming the deadline so a concurrent Shutdown either
		// sees this read blocked or is seen here.
		if s.closing.Load() {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			s.readFailed(c, err, log)
			return
		}

		// After first byte: tighten to per-command read timeout.
		if err := c.netConn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		tokens, err := ReadFrame(c.br, s.cfg.Limits)
		if err != nil {
			if s.readFailed(c, err, log) {
				continue
			}
			return
		}

		var reply domain.Reply
		if len(tokens) > 0 && lim != nil && !lim.Allow() {
			s.observer.ProtocolError(domain.ErrorKind(domain.ErrRateLimited))
			reply = domain.ReplyFromError(domain.ErrRateLimited)
		} else {
			reply, err = s.handler.Handle(ctx, tokens)
			if errors.Is(err, service.ErrCloseConnection) {
				return
			}
			if err != nil {
				reply = domain.ReplyFromError(err)
			}
		}

		if err := WriteReply(c.bw, reply); err != nil {
			return
		}
		// Pipelined frames already buffered are answered in one flush.
		if c.br.Buffered() > 0 {
			continue
		}
		if err := s.flush(c); err != nil {
			log.Debug("write failed", "error", err)
			return
		}
	}
}

// readFailed handles a read error and reports whether the connection can
// keep going.
func (s *Server) readFailed(c *Conn, err error, log *slog.Logger) bool {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		return false
	case errors.Is(err, domain.ErrFraming):
		s.observer.ProtocolError(domain.ErrorKind(err))
		log.Debug("malformed frame", "error", err)
		if WriteError(c.bw, domain.ErrFraming.Message) != nil {
			return false
		}
		return s.flush(c) == nil
	case errors.Is(err, domain.ErrLimitExceeded):
		s.observer.ProtocolError(domain.ErrorKind(err))
		log.Warn("protocol limit exceeded", "error", err)
		_ = WriteError(c.bw, domain.ErrLimitExceeded.Message)
		_ = s.flush(c)
		return false
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.observer.ProtocolError("truncated")
		log.Debug("stream ended inside a frame")
		return false
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Debug("connection timed out")
		return false
	default:
		log.Debug("connection read error", "error", err)
		return false
	}
}

func (s *Server) flush(c *Conn) error {
	writeTimeout := orDefault(s.cfg.WriteTimeout, 30*time.Second)
	if err := c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.bw.Flush()
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
