package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Key patterns whose values are fully redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
}

// Keys holding stored data. Their values are partially masked.
var dataKeys = []string{
	"value",
	"message",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// maxAttrLen bounds any string attribute written to the log.
const maxAttrLen = 256

// redactSensitive redacts, masks or truncates a string attribute
// depending on its key and length. Groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if strVal == "" {
			return a
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if isDataKey(a.Key) {
			return slog.String(a.Key, maskValue(strVal))
		}
		if len(strVal) > maxAttrLen {
			return slog.String(a.Key, truncate(strVal, maxAttrLen))
		}
		return a
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskValue keeps the first and last 3 bytes of a value.
// Format: first 3 chars + "..." + last 3 chars
func maskValue(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

func truncate(s string, n int) string {
	return s[:n] + fmt.Sprintf("...(%d bytes)", len(s))
}

// RedactString masks a stored value before it is logged by hand.
func RedactString(value string) string {
	if value == "" {
		return value
	}
	return maskValue(value)
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

func isDataKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, k := range dataKeys {
		if keyLower == k {
			return true
		}
	}
	return false
}
