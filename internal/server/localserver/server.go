package localserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"

	"github.com/yndnr/respkv/internal/server/redisserver"
)

// DefaultSocketMode restricts the socket to its owner.
const DefaultSocketMode fs.FileMode = 0600

// Config holds the local server configuration.
type Config struct {
	// Path is the socket file. Empty disables the server.
	Path string
	// Mode is the permission of the socket file (default: 0600).
	Mode fs.FileMode
	// RESP supplies timeouts and frame limits. Its address and rate limit
	// are ignored.
	RESP *redisserver.Config
}

// Server represents the local socket server.
type Server struct {
	path   string
	mode   fs.FileMode
	resp   *redisserver.Server
	logger *slog.Logger
}

// New creates a local server dispatching frames to handler. opts are
// passed to the underlying RESP server.
func New(cfg Config, handler redisserver.Handler, logger *slog.Logger, opts ...redisserver.Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	respCfg := redisserver.DefaultConfig()
	if cfg.RESP != nil {
		c := *cfg.RESP
		respCfg = &c
	}
	respCfg.Address = ""
	respCfg.RateLimit = 0

	mode := cfg.Mode
	if mode == 0 {
		mode = DefaultSocketMode
	}

	logger = logger.With("listener", "local")
	return &Server{
		path:   cfg.Path,
		mode:   mode,
		resp:   redisserver.New(respCfg, handler, logger, opts...),
		logger: logger,
	}
}

// Start creates the socket and serves connections in the background. A
// stale socket left by a previous run is replaced; any other file at the
// path is an error.
func (s *Server) Start(ctx context.Context) error {
	if s.path == "" {
		s.logger.Info("local server disabled (no socket path)")
		return nil
	}

	if err := removeStaleSocket(s.path); err != nil {
		return err
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen unix %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, s.mode); err != nil {
		ln.Close()
		return fmt.Errorf("chmod %s: %w", s.path, err)
	}

	return s.resp.Serve(ctx, ln)
}

// Addr returns the socket address, or nil before Start.
func (s *Server) Addr() net.Addr {
	return s.resp.Addr()
}

// Shutdown stops accepting and drains connections. Closing the listener
// removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.resp.Shutdown(ctx)
}

func removeStaleSocket(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}
	return os.Remove(path)
}
