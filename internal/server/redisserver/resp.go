package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/internal/core/domain"
)

// Protocol limits to prevent DoS attacks.
const (
	// DefaultMaxArrayLen limits the number of elements in one frame.
	DefaultMaxArrayLen = 1024

	// DefaultMaxLineLen limits a single protocol line, terminator excluded (512KB).
	DefaultMaxLineLen = 512 * 1024
)

// Limits bounds what ReadFrame accepts.
type Limits struct {
	MaxArrayLen int
	MaxLineLen  int
}

// DefaultLimits returns the default protocol limits.
func DefaultLimits() Limits {
	return Limits{
		MaxArrayLen: DefaultMaxArrayLen,
		MaxLineLen:  DefaultMaxLineLen,
	}
}

func (l Limits) withDefaults() Limits {
	if l.MaxArrayLen <= 0 {
		l.MaxArrayLen = DefaultMaxArrayLen
	}
	if l.MaxLineLen <= 0 {
		l.MaxLineLen = DefaultMaxLineLen
	}
	return l
}

// ReadFrame reads one command frame and returns its tokens.
//
// The grammar is line oriented: a "*<N>" line, then N pairs of a "$<L>"
// line and a content line. Only the first L bytes of each content line are
// kept, trimmed of surrounding whitespace and lower-cased. Content holding
// a line break cannot be represented.
//
// A stream that ends before the first byte of a frame yields an empty
// token slice and no error. Malformed headers return a domain.ErrFraming
// error; once the "*<N>" line has parsed, the remaining lines of the frame
// are consumed first, so the caller may report it and keep reading. Frames
// over the limits
// return domain.ErrLimitExceeded. A stream that ends inside a frame
// returns io.ErrUnexpectedEOF.
func ReadFrame(r *bufio.Reader, lim Limits) ([]string, error) {
	lim = lim.withDefaults()

	line, err := readLine(r, lim.MaxLineLen)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []string{}, nil
		}
		return nil, err
	}

	if !strings.HasPrefix(line, "*") {
		return nil, domain.ErrFraming
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[1:]))
	if err != nil || n < 0 {
		return nil, domain.ErrFraming.Withf("Input format error: invalid element count %q", line[1:]).WithCause(err)
	}
	if n > lim.MaxArrayLen {
		return nil, domain.ErrLimitExceeded.WithCause(
			fmt.Errorf("element count %d exceeds limit %d", n, lim.MaxArrayLen))
	}

	tokens := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tok, err := readElement(r, lim)
		if err != nil {
			if errors.Is(err, domain.ErrFraming) {
				if derr := discardLines(r, 2*(n-i-1), lim.MaxLineLen); derr != nil {
					return nil, derr
				}
			}
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func readElement(r *bufio.Reader, lim Limits) (string, error) {
	header, err := readLine(r, lim.MaxLineLen)
	if err != nil {
		return "", unexpectedEOF(err)
	}
	// The "$" marker itself is not checked; only the length must parse.
	// A bad header still owns the content line that follows it.
	if len(header) < 2 {
		if err := discardLines(r, 1, lim.MaxLineLen); err != nil {
			return "", err
		}
		return "", domain.ErrFraming.Withf("Input format error: invalid length header %q", header)
	}
	size, err := strconv.Atoi(strings.TrimSpace(header[1:]))
	if err != nil || size < 0 {
		if err := discardLines(r, 1, lim.MaxLineLen); err != nil {
			return "", err
		}
		return "", domain.ErrFraming.Withf("Input format error: invalid length header %q", header).WithCause(err)
	}
	if size > lim.MaxLineLen {
		return "", domain.ErrLimitExceeded.WithCause(
			fmt.Errorf("element length %d exceeds limit %d", size, lim.MaxLineLen))
	}

	content, err := readLine(r, lim.MaxLineLen)
	if err != nil {
		return "", unexpectedEOF(err)
	}
	if size > len(content) {
		return "", domain.ErrFraming.Withf("Input format error: element shorter than declared length %d", size)
	}
	return strings.ToLower(strings.TrimSpace(content[:size])), nil
}

// discardLines consumes n lines of a frame that is being abandoned.
func discardLines(r *bufio.Reader, n, maxLen int) error {
	for i := 0; i < n; i++ {
		if _, err := readLine(r, maxLen); err != nil {
			return unexpectedEOF(err)
		}
	}
	return nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// readLine reads up to and including "\n" and returns the line without its
// terminator ("\r\n" or "\n"). maxLen bounds the line without the
// terminator. A stream ending with no bytes read returns io.EOF; one ending
// mid-line returns io.ErrUnexpectedEOF.
func readLine(r *bufio.Reader, maxLen int) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		buf = append(buf, frag...)
		if len(buf) > maxLen+2 {
			return "", domain.ErrLimitExceeded.WithCause(
				fmt.Errorf("line length exceeds limit %d", maxLen))
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && len(buf) > 0 {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}

	buf = bytes.TrimSuffix(buf, []byte("\n"))
	buf = bytes.TrimSuffix(buf, []byte("\r"))
	if len(buf) > maxLen {
		return "", domain.ErrLimitExceeded.WithCause(
			fmt.Errorf("line length exceeds limit %d", maxLen))
	}
	return string(buf), nil
}

// EncodeCommand encodes tokens as a request frame.
func EncodeCommand(tokens []string) []byte {
	return AppendCommand(nil, tokens)
}

// AppendCommand appends the request frame for tokens to dst.
func AppendCommand(dst []byte, tokens []string) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(len(tokens)), 10)
	dst = append(dst, '\r', '\n')
	for _, t := range tokens {
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(t)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, t...)
		dst = append(dst, '\r', '\n')
	}
	return dst
}

// EncodeReply returns the wire form of a reply.
func EncodeReply(reply domain.Reply) []byte {
	return AppendReply(nil, reply)
}

// AppendReply appends the wire form of reply to dst. Text is written
// verbatim; embedded line breaks are not escaped.
func AppendReply(dst []byte, reply domain.Reply) []byte {
	switch reply.Kind {
	case domain.KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, reply.Text...)
	case domain.KindBulkNil:
		dst = append(dst, "$-1"...)
	default:
		dst = append(dst, '-')
		dst = append(dst, reply.Text...)
	}
	return append(dst, '\r', '\n')
}

// WriteReply writes reply to w without flushing.
func WriteReply(w *bufio.Writer, reply domain.Reply) error {
	switch reply.Kind {
	case domain.KindSimpleString:
		return WriteSimpleString(w, reply.Text)
	case domain.KindBulkNil:
		return WriteNullBulk(w)
	default:
		return WriteError(w, reply.Text)
	}
}

// WriteSimpleString writes a "+" reply.
func WriteSimpleString(w *bufio.Writer, s string) error {
	_, err := w.WriteString("+" + s + "\r\n")
	return err
}

// WriteError writes a "-" error reply.
func WriteError(w *bufio.Writer, s string) error {
	_, err := w.WriteString("-" + s + "\r\n")
	return err
}

// WriteNullBulk writes the nil bulk reply "$-1".
func WriteNullBulk(w *bufio.Writer) error {
	_, err := w.WriteString("$-1\r\n")
	return err
}
