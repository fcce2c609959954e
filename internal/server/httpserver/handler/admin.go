package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// handleAdminStatus handles GET /admin/v1/status/summary.
func (h *Handler) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	summary := StatusSummary{
		Status:  "running",
		Version: buildinfo.Get().Version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	}
	if h.stats != nil {
		st := h.stats.Stats(h.clock())
		summary.Keys = st.Keys
		summary.Volatile = st.Volatile
		summary.Expired = st.Expired
		summary.Shards = h.stats.ShardCount()
	}
	h.writeJSON(w, r, http.StatusOK, summary)
}

// handleKeyInfo handles GET /admin/v1/keys/{key}. It reports the deadline
// and size of one entry; the value itself is never returned. Keys are
// stored lower-cased, so the path segment is lower-cased before lookup.
func (h *Handler) handleKeyInfo(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "key space not configured")
		return
	}

	key := strings.ToLower(r.PathValue("key"))
	entry, ok := h.stats.Lookup(key)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, CodeKeyNotFound, "key not found")
		return
	}

	now := h.clock()
	info := KeyInfo{
		Key:        key,
		ValueBytes: len(entry.Value),
		TTLMillis:  -1,
		Expired:    entry.ExpiredAt(now),
	}
	if entry.ExpireAt != 0 {
		info.ExpireAt = entry.ExpireAt
		info.TTLMillis = max(entry.ExpireAt-now, 0)
	}
	h.writeJSON(w, r, http.StatusOK, info)
}

// handleGCTrigger handles POST /admin/v1/gc/trigger. It runs one expiry
// sweep over every shard.
func (h *Handler) handleGCTrigger(w http.ResponseWriter, r *http.Request) {
	if h.sweeper == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "expiry sweeper not configured")
		return
	}

	removed := h.sweeper.SweepOnce(r.Context())
	logger.L(r.Context()).Info("expiry sweep triggered", "removed", removed)

	h.writeJSON(w, r, http.StatusOK, SweepResult{
		Removed:     removed,
		TriggeredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
