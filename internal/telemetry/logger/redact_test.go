package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func logOne(t *testing.T, args ...any) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("entry", args...)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return entry
}

func TestRedactSensitive_KeyPatterns(t *testing.T) {
	tests := []struct {
		key string
	}{
		{"password"},
		{"db_password"},
		{"client_secret"},
		{"AuthHeader"},
		{"token"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			entry := logOne(t, tt.key, "s3cr3t-material")
			if entry[tt.key] != redactedValue {
				t.Errorf("%s = %v, want %s", tt.key, entry[tt.key], redactedValue)
			}
		})
	}
}

func TestRedactSensitive_EmptySensitiveValue(t *testing.T) {
	entry := logOne(t, "password", "")
	if entry["password"] != "" {
		t.Errorf("empty password should stay empty, got %v", entry["password"])
	}
}

func TestRedactSensitive_StoredValueMasked(t *testing.T) {
	entry := logOne(t, "key", "user:42", "value", "supercalifragilistic")

	if entry["key"] != "user:42" {
		t.Errorf("key should be logged as-is, got %v", entry["key"])
	}
	if entry["value"] != "sup...tic" {
		t.Errorf("value = %v, want sup...tic", entry["value"])
	}
}

func TestRedactSensitive_LongStringTruncated(t *testing.T) {
	long := strings.Repeat("x", 1000)
	entry := logOne(t, "detail", long)

	got, _ := entry["detail"].(string)
	if len(got) >= len(long) {
		t.Fatalf("detail was not truncated (len %d)", len(got))
	}
	if !strings.HasSuffix(got, "...(1000 bytes)") {
		t.Errorf("truncated detail = %q", got[len(got)-20:])
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	a := redactSensitive(slog.Group("req", slog.String("password", "pw"), slog.String("verb", "set")))

	attrs := a.Value.Group()
	if len(attrs) != 2 {
		t.Fatalf("group has %d attrs, want 2", len(attrs))
	}
	if attrs[0].Value.String() != redactedValue {
		t.Errorf("nested password = %q, want redacted", attrs[0].Value.String())
	}
	if attrs[1].Value.String() != "set" {
		t.Errorf("nested verb = %q, want set", attrs[1].Value.String())
	}
}

func TestRedactSensitive_NonString(t *testing.T) {
	a := slog.Int("token_count", 5)
	if got := redactSensitive(a); !got.Equal(a) {
		t.Errorf("non-string attr changed: %v", got)
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "***"},
		{"exactly8", "***"},
		{"abcdefghijkl", "abc...jkl"},
	}
	for _, tt := range tests {
		if got := RedactString(tt.in); got != tt.want {
			t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"api_secret", true},
		{"credentials", true},
		{"key", false},
		{"value", false},
		{"remote", false},
	}
	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
