package testing

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/tKV/lib/storage"
)

// RunStorageBenchmarks runs all benchmarks for a storage.Storage
// implementation.
func RunStorageBenchmarks(b *testing.B, name string, factory storage.EngineFactory) {
	b.Run(name+"/Set", func(b *testing.B) {
		benchmarkSet(b, mustCreateB(b, factory))
	})

	b.Run(name+"/SetExisting", func(b *testing.B) {
		benchmarkSetExisting(b, mustCreateB(b, factory))
	})

	b.Run(name+"/Get", func(b *testing.B) {
		benchmarkGet(b, mustCreateB(b, factory))
	})

	b.Run(name+"/Del", func(b *testing.B) {
		benchmarkDel(b, mustCreateB(b, factory))
	})

	b.Run(name+"/GetAll", func(b *testing.B) {
		benchmarkGetAll(b, mustCreateB(b, factory))
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func mustCreateB(b *testing.B, factory storage.EngineFactory) storage.Storage {
	b.Helper()
	engine, err := factory()
	if err != nil {
		b.Fatalf("Failed to create engine: %v", err)
	}
	b.Cleanup(func() { _ = engine.Close() })
	return engine
}

func benchmarkSet(b *testing.B, engine storage.Storage) {
	value := storage.NewStringValue("benchmark-value")
	var counter atomic.Uint64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := fmt.Sprintf("key-%d", counter.Add(1))
			if _, _, err := engine.Set("bench", key, value); err != nil {
				b.Fatalf("Set failed: %v", err)
			}
		}
	})
}

func benchmarkSetExisting(b *testing.B, engine storage.Storage) {
	value := storage.NewStringValue("benchmark-value")
	if _, _, err := engine.Set("bench", "hot", value); err != nil {
		b.Fatalf("Set failed: %v", err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, _, err := engine.Set("bench", "hot", value); err != nil {
				b.Fatalf("Set failed: %v", err)
			}
		}
	})
}

func benchmarkGet(b *testing.B, engine storage.Storage) {
	const keys = 1024
	for i := 0; i < keys; i++ {
		key := fmt.Sprintf("key-%d", i)
		if _, _, err := engine.Set("bench", key, storage.NewIntValue(int64(i))); err != nil {
			b.Fatalf("Set failed: %v", err)
		}
	}
	var counter atomic.Uint64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := fmt.Sprintf("key-%d", counter.Add(1)%keys)
			if _, _, err := engine.Get("bench", key); err != nil {
				b.Fatalf("Get failed: %v", err)
			}
		}
	})
}

func benchmarkDel(b *testing.B, engine storage.Storage) {
	value := storage.NewStringValue("benchmark-value")
	var counter atomic.Uint64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := fmt.Sprintf("key-%d", counter.Add(1))
			if _, _, err := engine.Set("bench", key, value); err != nil {
				b.Fatalf("Set failed: %v", err)
			}
			if _, _, err := engine.Del("bench", key); err != nil {
				b.Fatalf("Del failed: %v", err)
			}
		}
	})
}

func benchmarkGetAll(b *testing.B, engine storage.Storage) {
	for i := 0; i < 256; i++ {
		key := fmt.Sprintf("key-%d", i)
		if _, _, err := engine.Set("bench", key, storage.NewIntValue(int64(i))); err != nil {
			b.Fatalf("Set failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.GetAll("bench"); err != nil {
			b.Fatalf("GetAll failed: %v", err)
		}
	}
}
