package handler

import "time"

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// Error codes carried in Response.Code.
const (
	CodeNotReady    = "RESPKV-SYS-5030"
	CodeInternal    = "RESPKV-SYS-5000"
	CodeUnavailable = "RESPKV-SYS-5031"
	CodeKeyNotFound = "RESPKV-KEY-4040"
)

// HealthStatus is the body of GET /health and GET /ready.
type HealthStatus struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// StatusSummary is the body of GET /admin/v1/status/summary.
type StatusSummary struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Keys     int    `json:"keys"`
	Volatile int    `json:"volatile_keys"`
	Expired  int    `json:"expired_keys"`
	Shards   int    `json:"shards"`
}

// KeyInfo is the body of GET /admin/v1/keys/{key}. TTLMillis is -1 for
// keys without a deadline.
type KeyInfo struct {
	Key        string `json:"key"`
	ValueBytes int    `json:"value_bytes"`
	ExpireAt   int64  `json:"expire_at,omitempty"`
	TTLMillis  int64  `json:"ttl_ms"`
	Expired    bool   `json:"expired"`
}

// SweepResult is the body of POST /admin/v1/gc/trigger.
type SweepResult struct {
	Removed     int    `json:"removed"`
	TriggeredAt string `json:"triggered_at"`
}
