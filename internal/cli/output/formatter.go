package output

import (
	"io"

	"github.com/yndnr/respkv/internal/core/domain"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatText, "":
		return FormatText, true
	case FormatJSON:
		return FormatJSON, true
	default:
		return "", false
	}
}

// Formatter writes replies to w.
type Formatter interface {
	Format(w io.Writer, reply domain.Reply) error
}

// NewFormatter creates a formatter for the given format. useColor only
// affects the text format.
func NewFormatter(format Format, useColor bool) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	default:
		return NewTextFormatter(useColor)
	}
}
