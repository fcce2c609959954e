package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/yndnr/respkv/internal/core/domain"
)

// TextFormatter prints replies the way redis-cli does.
type TextFormatter struct {
	okColor  *color.Color
	nilColor *color.Color
	errColor *color.Color
}

// NewTextFormatter creates a TextFormatter. Colors are forced on or off
// regardless of whether w is a terminal.
func NewTextFormatter(useColor bool) *TextFormatter {
	f := &TextFormatter{
		okColor:  color.New(color.FgGreen),
		nilColor: color.New(color.FgYellow),
		errColor: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{f.okColor, f.nilColor, f.errColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Format writes one reply followed by a newline.
func (f *TextFormatter) Format(w io.Writer, reply domain.Reply) error {
	var err error
	switch reply.Kind {
	case domain.KindSimpleString:
		_, err = f.okColor.Fprintln(w, reply.Text)
	case domain.KindBulkNil:
		_, err = f.nilColor.Fprintln(w, "(nil)")
	case domain.KindError:
		_, err = f.errColor.Fprintln(w, "(error) "+reply.Text)
	default:
		err = fmt.Errorf("unknown reply kind %d", reply.Kind)
	}
	return err
}
