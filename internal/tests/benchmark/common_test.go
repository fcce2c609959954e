package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
)

// KeyCounts defines the key space sizes for benchmarking.
var KeyCounts = []int{5000, 10000, 50000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000, 100000}

// farFuture is a deadline no benchmark reaches.
const farFuture = int64(1) << 62

// newKey generates a unique, roughly time-ordered key.
func newKey() string {
	return "key-" + ulid.Make().String()
}

// prefillStore writes count keys without expiry and returns them.
func prefillStore(ctx context.Context, store *memory.Store, count int) []string {
	keys := make([]string, count)
	for i := 0; i < count; i++ {
		keys[i] = newKey()
		store.Set(ctx, keys[i], "value", 0, domain.Always, 0)
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various key counts.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
