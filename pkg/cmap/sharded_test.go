package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.ShardCount() != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", m.ShardCount(), DefaultShardCount)
	}
}

func TestWithShardCount(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{MaxShardCount * 2, DefaultShardCount},
		{1, 1},
		{2, 2},
		{8, 8},
		{64, 64},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := New[int](WithShardCount(tt.input))
			if m.ShardCount() != tt.expected {
				t.Errorf("WithShardCount(%d) shard count = %d, want %d",
					tt.input, m.ShardCount(), tt.expected)
			}
		})
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	a := New[int](WithShardCount(32), WithSeed(7))
	b := New[int](WithShardCount(32), WithSeed(7))

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		ia, ib := a.ShardIndex(key), b.ShardIndex(key)
		if ia != ib {
			t.Fatalf("ShardIndex(%q) differs across maps with same seed: %d vs %d", key, ia, ib)
		}
		if ia < 0 || ia >= 32 {
			t.Fatalf("ShardIndex(%q) = %d, out of range", key, ia)
		}
	}
}

func TestSetGet(t *testing.T) {
	m := New[int]()

	m.Set("key1", 100)
	m.Set("key2", 200)

	if val, ok := m.Get("key1"); !ok || val != 100 {
		t.Errorf("Get(key1) = (%d, %v), want (100, true)", val, ok)
	}
	if _, ok := m.Get("key2"); !ok {
		t.Error("Get(key2) ok = false, want true")
	}
	if val, ok := m.Get("nonexistent"); ok {
		t.Errorf("Get(nonexistent) = (%d, %v), want (0, false)", val, ok)
	}

	m.Set("key1", 101)
	if val, _ := m.Get("key1"); val != 101 {
		t.Errorf("Get(key1) after overwrite = %d, want 101", val)
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
}

func TestCompute(t *testing.T) {
	m := New[int]()

	op := m.Compute("a", func(old int, loaded bool) (int, Op) {
		if loaded {
			t.Error("loaded = true for absent key")
		}
		return 1, Store
	})
	if op != Store {
		t.Errorf("op = %v, want Store", op)
	}

	op = m.Compute("a", func(old int, loaded bool) (int, Op) {
		if !loaded || old != 1 {
			t.Errorf("old = (%d, %v), want (1, true)", old, loaded)
		}
		return 0, Keep
	})
	if op != Keep {
		t.Errorf("op = %v, want Keep", op)
	}
	if v, _ := m.Get("a"); v != 1 {
		t.Errorf("Get(a) = %d after Keep, want 1", v)
	}

	if op := m.Compute("missing", func(int, bool) (int, Op) { return 0, Remove }); op != Keep {
		t.Errorf("Remove on absent key reported %v, want Keep", op)
	}

	if op := m.Compute("a", func(int, bool) (int, Op) { return 0, Remove }); op != Remove {
		t.Errorf("op = %v, want Remove", op)
	}
	if _, ok := m.Get("a"); ok {
		t.Error("a should be removed")
	}
}

func TestDeleteIf(t *testing.T) {
	m := New[int]()
	m.Set("a", 5)

	if m.DeleteIf("a", func(v int) bool { return v > 10 }) {
		t.Error("DeleteIf removed a value that did not match")
	}
	if !m.DeleteIf("a", func(v int) bool { return v == 5 }) {
		t.Error("DeleteIf did not remove a matching value")
	}
	if m.DeleteIf("a", func(int) bool { return true }) {
		t.Error("DeleteIf on absent key returned true")
	}
}

func TestSweepShard(t *testing.T) {
	m := New[int](WithShardCount(1))
	for i := 0; i < 10; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	deleted := m.SweepShard(0, 0, func(_ string, v int) bool { return v%2 == 0 })
	if deleted != 5 {
		t.Errorf("deleted = %d, want 5", deleted)
	}
	if m.Count() != 5 {
		t.Errorf("Count() = %d, want 5", m.Count())
	}

	if n := m.SweepShard(0, 2, func(string, int) bool { return true }); n != 2 {
		t.Errorf("limited sweep deleted %d, want 2", n)
	}
	if n := m.SweepShard(5, 0, func(string, int) bool { return true }); n != 0 {
		t.Errorf("sweep of out-of-range shard deleted %d, want 0", n)
	}
}

func TestRange(t *testing.T) {
	m := New[int]()
	for i := 0; i < 50; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 49*50/2 {
		t.Errorf("sum = %d, want %d", sum, 49*50/2)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("visited = %d, want 3 (early stop)", visited)
	}
}

func TestConcurrentCompute(t *testing.T) {
	m := New[int]()
	const goroutines = 16
	const perG = 500

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				m.Compute("counter", func(old int, _ bool) (int, Op) {
					return old + 1, Store
				})
			}
		}()
	}
	wg.Wait()

	if v, _ := m.Get("counter"); v != goroutines*perG {
		t.Errorf("counter = %d, want %d", v, goroutines*perG)
	}
}
