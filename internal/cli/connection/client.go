package connection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/server/redisserver"
)

// DefaultTimeout bounds dial and per-command round trips when neither the
// caller nor the context sets one.
const DefaultTimeout = 5 * time.Second

// ErrProtocol is returned for replies the client cannot decode.
var ErrProtocol = errors.New("connection: malformed reply")

// ErrClosed is returned when the client is used after Close.
var ErrClosed = errors.New("connection: client closed")

// Client is a RESP client over a single connection. Calls are serialized.
type Client struct {
	addr    string
	timeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	br     *bufio.Reader
	bw     *bufio.Writer
	buf    []byte
	closed bool
}

// UnixPrefix marks an address as a Unix socket path.
const UnixPrefix = "unix:"

// Dial connects to addr, a host:port or "unix:" followed by a socket path.
// A non-positive timeout uses DefaultTimeout.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	network, address := splitAddr(addr)
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c := NewClient(conn, timeout)
	c.addr = addr
	return c, nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	addr := ""
	if ra := conn.RemoteAddr(); ra != nil {
		addr = ra.String()
	}
	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
		br:      bufio.NewReader(conn),
		bw:      bufio.NewWriter(conn),
	}
}

func splitAddr(addr string) (network, address string) {
	if path, ok := strings.CutPrefix(addr, UnixPrefix); ok {
		return "unix", path
	}
	return "tcp", addr
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command and waits for its reply. Error replies are returned
// as a Reply of KindError with a nil error; the error result is reserved
// for transport and decoding failures.
func (c *Client) Do(ctx context.Context, tokens ...string) (domain.Reply, error) {
	replies, err := c.Pipeline(ctx, [][]string{tokens})
	if err != nil {
		return domain.Reply{}, err
	}
	return replies[0], nil
}

// DoCommand sends a parsed command.
func (c *Client) DoCommand(ctx context.Context, cmd domain.Command) (domain.Reply, error) {
	if _, ok := cmd.(domain.Exit); ok {
		return domain.Reply{}, errors.New("connection: exit has no request form, use Close")
	}
	return c.Do(ctx, cmd.Args()...)
}

// Pipeline writes every command in one flush, then reads one reply per
// command in order.
func (c *Client) Pipeline(ctx context.Context, cmds [][]string) ([]domain.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.setDeadline(ctx); err != nil {
		return nil, err
	}

	for _, tokens := range cmds {
		c.buf = redisserver.AppendCommand(c.buf[:0], tokens)
		if _, err := c.bw.Write(c.buf); err != nil {
			return nil, fmt.Errorf("write: %w", err)
		}
	}
	if err := c.bw.Flush(); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	replies := make([]domain.Reply, 0, len(cmds))
	for range cmds {
		reply, err := ReadReply(c.br)
		if err != nil {
			return replies, fmt.Errorf("read reply: %w", err)
		}
		replies = append(replies, reply)
	}
	return replies, nil
}

func (c *Client) setDeadline(ctx context.Context) error {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.conn.SetDeadline(deadline)
}

// Close sends an empty frame so the server ends the session, then closes
// the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	c.buf = redisserver.AppendCommand(c.buf[:0], nil)
	if _, err := c.bw.Write(c.buf); err == nil {
		_ = c.bw.Flush()
	}
	return c.conn.Close()
}

// ReadReply decodes one reply line: "+text", "-message" or "$-1". A bulk
// string "$N" followed by its payload is accepted as well.
func ReadReply(br *bufio.Reader) (domain.Reply, error) {
	line, err := readLine(br)
	if err != nil {
		return domain.Reply{}, err
	}
	if line == "" {
		return domain.Reply{}, fmt.Errorf("%w: empty line", ErrProtocol)
	}

	switch line[0] {
	case '+':
		return domain.SimpleString(line[1:]), nil
	case '-':
		return domain.ErrorReply(line[1:]), nil
	case '$':
		n, err := strconv.Atoi(line[1:])
		if err != nil {
			return domain.Reply{}, fmt.Errorf("%w: bad bulk length %q", ErrProtocol, line[1:])
		}
		if n < 0 {
			return domain.BulkNil(), nil
		}
		payload, err := readLine(br)
		if err != nil {
			return domain.Reply{}, err
		}
		if len(payload) != n {
			return domain.Reply{}, fmt.Errorf("%w: bulk length %d, got %d bytes", ErrProtocol, n, len(payload))
		}
		return domain.SimpleString(payload), nil
	default:
		return domain.Reply{}, fmt.Errorf("%w: unexpected type byte %q", ErrProtocol, line[0])
	}
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, nil
}
