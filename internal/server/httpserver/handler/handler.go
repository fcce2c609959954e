package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/respkv/internal/storage/memory"
)

// KeySpaceStats is the read-only view of the key space used by the admin
// endpoints. None of its methods purge expired entries.
type KeySpaceStats interface {
	ShardCount() int
	Stats(nowMillis int64) memory.Stats
	Lookup(key string) (memory.Entry, bool)
}

// Sweeper removes expired entries on demand.
type Sweeper interface {
	SweepOnce(ctx context.Context) int
}

// Config wires the handler to the running server. Nil fields disable the
// endpoints that need them.
type Config struct {
	Stats   KeySpaceStats
	Sweeper Sweeper
	// Ready reports whether the RESP listener is accepting connections.
	Ready   func() error
	Metrics http.Handler
	Logger  *slog.Logger
	// Clock returns epoch milliseconds; defaults to the wall clock.
	Clock   func() int64
}

// Handler routes admin requests.
type Handler struct {
	stats   KeySpaceStats
	sweeper Sweeper
	ready   func() error
	metrics http.Handler
	logger  *slog.Logger
	clock   func() int64
	started time.Time
	mux     *http.ServeMux
}

// New creates a Handler.
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = func() int64 { return time.Now().UnixMilli() }
	}
	h := &Handler{
		stats:   cfg.Stats,
		sweeper: cfg.Sweeper,
		ready:   cfg.Ready,
		metrics: cfg.Metrics,
		logger:  logger,
		clock:   clock,
		started: time.Now(),
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /version", h.handleVersion)

	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics)
	}

	h.mux.HandleFunc("GET /admin/v1/status/summary", h.handleAdminStatus)
	h.mux.HandleFunc("GET /admin/v1/keys/{key}", h.handleKeyInfo)
	h.mux.HandleFunc("POST /admin/v1/gc/trigger", h.handleGCTrigger)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, nil)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// getRequestID reads the request ID set by the RequestID middleware.
func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}
