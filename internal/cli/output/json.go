package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/respkv/internal/core/domain"
)

// JSONReply is the JSON form of a reply.
type JSONReply struct {
	Type  string  `json:"type"`
	Value *string `json:"value,omitempty"`
	Error string  `json:"error,omitempty"`
}

// JSONFormatter formats replies as one JSON object per line.
type JSONFormatter struct{}

// Format encodes reply as JSON.
func (f *JSONFormatter) Format(w io.Writer, reply domain.Reply) error {
	out := JSONReply{Type: reply.Kind.String()}
	switch reply.Kind {
	case domain.KindSimpleString:
		text := reply.Text
		out.Value = &text
	case domain.KindError:
		out.Error = reply.Text
	}
	return json.NewEncoder(w).Encode(out)
}
