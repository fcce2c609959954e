package connection

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/core/service"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
)

func startServer(t *testing.T) string {
	t.Helper()
	cfg := redisserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := redisserver.New(cfg, service.NewExecutor(memory.New()), nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

func dial(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := Dial(context.Background(), addr, time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_Commands(t *testing.T) {
	c := dial(t, startServer(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		tokens []string
		want   domain.Reply
	}{
		{"ping", []string{"ping"}, domain.ReplyPong},
		{"echo", []string{"echo", "hello"}, domain.SimpleString("hello")},
		{"get missing", []string{"get", "k"}, domain.BulkNil()},
		{"set", []string{"set", "k", "v"}, domain.ReplyOK},
		{"get", []string{"get", "k"}, domain.SimpleString("v")},
		{"set nx on present key", []string{"set", "k", "w", "nx"}, domain.BulkNil()},
		{"unknown command", []string{"flush"}, domain.ErrorReply("Unknown command: flush")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Do(ctx, tt.tokens...)
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Do(%q) = %+v, want %+v", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestClient_DoCommand(t *testing.T) {
	c := dial(t, startServer(t))
	ctx := context.Background()

	set := domain.Set{Key: "session", Value: "abc", Expiry: domain.ExpireMillis(60000), Condition: domain.OnlyIfAbsent}
	if got, err := c.DoCommand(ctx, set); err != nil || got != domain.ReplyOK {
		t.Fatalf("DoCommand(set) = %+v, %v", got, err)
	}
	if got, err := c.DoCommand(ctx, domain.Get{Key: "session"}); err != nil || got != domain.SimpleString("abc") {
		t.Fatalf("DoCommand(get) = %+v, %v", got, err)
	}
	if _, err := c.DoCommand(ctx, domain.Exit{}); err == nil {
		t.Error("DoCommand(exit) should fail")
	}
}

func TestClient_Pipeline(t *testing.T) {
	c := dial(t, startServer(t))

	replies, err := c.Pipeline(context.Background(), [][]string{
		{"set", "a", "1"},
		{"get", "a"},
		{"echo"},
		{"ping"},
	})
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	if len(replies) != 4 {
		t.Fatalf("len(replies) = %d, want 4", len(replies))
	}
	if replies[1] != domain.SimpleString("1") {
		t.Errorf("replies[1] = %+v", replies[1])
	}
	if replies[2].Kind != domain.KindError {
		t.Errorf("replies[2] = %+v, want an arity error", replies[2])
	}
	if replies[3] != domain.ReplyPong {
		t.Errorf("replies[3] = %+v", replies[3])
	}
}

func TestClient_CloseSendsExit(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	c := NewClient(client, time.Second)

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 16)
		n, _ := server.Read(buf)
		got <- string(buf[:n])
	}()

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if frame := <-got; frame != "*0\r\n" {
		t.Errorf("Close() sent %q, want %q", frame, "*0\r\n")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := c.Do(context.Background(), "ping"); !errors.Is(err, ErrClosed) {
		t.Errorf("Do() after Close error = %v, want ErrClosed", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	// The fake server reads the request but never answers.
	go func() { _, _ = io.Copy(io.Discard, server) }()

	c := NewClient(client, 50*time.Millisecond)
	defer c.Close()

	_, err := c.Do(context.Background(), "ping")
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("Do() error = %v, want a timeout", err)
	}
}

func TestClient_CanceledContext(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	c := NewClient(client, time.Second)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Do(ctx, "ping"); !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, err := Dial(context.Background(), addr, time.Second); err == nil {
		t.Error("Dial() to a closed port should fail")
	}
}

func TestReadReply(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.Reply
	}{
		{"simple string", "+OK\r\n", domain.ReplyOK},
		{"empty simple string", "+\r\n", domain.SimpleString("")},
		{"error", "-Unknown command: foo\r\n", domain.ErrorReply("Unknown command: foo")},
		{"nil bulk", "$-1\r\n", domain.BulkNil()},
		{"bulk string", "$5\r\nhello\r\n", domain.SimpleString("hello")},
		{"bare LF", "+PONG\n", domain.ReplyPong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadReply(bufio.NewReader(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadReply() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadReply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadReply_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty line", "\r\n", ErrProtocol},
		{"unknown type", ":1\r\n", ErrProtocol},
		{"bad bulk length", "$x\r\n", ErrProtocol},
		{"short bulk", "$5\r\nhi\r\n", ErrProtocol},
		{"eof", "", io.EOF},
		{"eof in bulk", "$5\r\n", io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadReply(bufio.NewReader(strings.NewReader(tt.input)))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadReply() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadReply_MatchesServerEncoding(t *testing.T) {
	for _, reply := range []domain.Reply{domain.ReplyOK, domain.BulkNil(), domain.ErrorReply("ERR x")} {
		got, err := ReadReply(bufio.NewReader(strings.NewReader(string(redisserver.EncodeReply(reply)))))
		if err != nil {
			t.Fatalf("ReadReply() error = %v", err)
		}
		if got != reply {
			t.Errorf("ReadReply(EncodeReply(%+v)) = %+v", reply, got)
		}
	}
}

func TestSplitAddr(t *testing.T) {
	tests := []struct {
		addr, network, address string
	}{
		{"127.0.0.1:6379", "tcp", "127.0.0.1:6379"},
		{"[::1]:6379", "tcp", "[::1]:6379"},
		{"unix:/run/respkv.sock", "unix", "/run/respkv.sock"},
	}
	for _, tt := range tests {
		network, address := splitAddr(tt.addr)
		if network != tt.network || address != tt.address {
			t.Errorf("splitAddr(%q) = %q, %q; want %q, %q", tt.addr, network, address, tt.network, tt.address)
		}
	}
}

func TestDial_Unix(t *testing.T) {
	dir, err := os.MkdirTemp("", "respkv")
	if err != nil {
		t.Fatalf("MkdirTemp() error = %v", err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "s.sock")

	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	srv := redisserver.New(redisserver.DefaultConfig(), service.NewExecutor(memory.New()), nil)
	if err := srv.Serve(context.Background(), ln); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	defer srv.Shutdown(context.Background())

	c, err := Dial(context.Background(), UnixPrefix+path, time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	reply, err := c.Do(context.Background(), "ping")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if reply != domain.ReplyPong {
		t.Errorf("reply = %+v, want PONG", reply)
	}
}
