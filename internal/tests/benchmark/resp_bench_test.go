package benchmark

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/core/service"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
)

// BenchmarkReadFrame benchmarks decoding a SET frame with options.
func BenchmarkReadFrame(b *testing.B) {
	frame := redisserver.EncodeCommand([]string{"set", "session:42", "active", "px", "1500", "nx"})
	stream := bytes.Repeat(frame, 1024)
	lim := redisserver.DefaultLimits()

	b.SetBytes(int64(len(frame)))
	b.ReportAllocs()
	b.ResetTimer()

	r := bytes.NewReader(stream)
	br := bufio.NewReader(r)
	for i := 0; i < b.N; i++ {
		if i%1024 == 0 {
			r.Reset(stream)
			br.Reset(r)
		}
		if _, err := redisserver.ReadFrame(br, lim); err != nil {
			b.Fatalf("ReadFrame failed: %v", err)
		}
	}
}

// BenchmarkParse benchmarks turning tokens into commands.
func BenchmarkParse(b *testing.B) {
	tokens := []string{"set", "session:42", "active", "ex", "60", "xx"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := domain.Parse(tokens); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}

// BenchmarkWriteReply benchmarks encoding replies into a buffered writer.
func BenchmarkWriteReply(b *testing.B) {
	replies := []domain.Reply{domain.ReplyOK, domain.BulkNil(), domain.SimpleString("active")}
	bw := bufio.NewWriter(io.Discard)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := redisserver.WriteReply(bw, replies[i%len(replies)]); err != nil {
			b.Fatalf("WriteReply failed: %v", err)
		}
	}
	bw.Flush()
}

// BenchmarkExecutorHandle benchmarks parse plus execute for GET and SET.
func BenchmarkExecutorHandle(b *testing.B) {
	ctx := context.Background()
	exec := service.NewExecutor(memory.New())
	set := []string{"set", "k", "v", "ex", "60"}
	get := []string{"get", "k"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tokens := get
		if i%2 == 0 {
			tokens = set
		}
		if _, err := exec.Handle(ctx, tokens); err != nil {
			b.Fatalf("Handle failed: %v", err)
		}
	}
}
