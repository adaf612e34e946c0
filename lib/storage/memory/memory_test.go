package memory

import (
	"testing"

	"github.com/ValentinKolb/tKV/lib/storage"
	sttesting "github.com/ValentinKolb/tKV/lib/storage/testing"
)

func Test(t *testing.T) {
	sttesting.RunStorageTests(t, "Memory", Factory())
}

func Benchmark(b *testing.B) {
	sttesting.RunStorageBenchmarks(b, "Memory", Factory())
}

// The memory cursor reads values lazily: keys deleted after GetIter but
// before Next must be skipped, not returned stale and not break iteration.
func TestIterSkipsConcurrentlyDeletedKeys(t *testing.T) {
	engine := New()
	defer engine.Close()

	for _, key := range []string{"a", "b", "c"} {
		if _, _, err := engine.Set("t", key, storage.NewStringValue(key)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	it, err := engine.GetIter("t")
	if err != nil {
		t.Fatalf("GetIter failed: %v", err)
	}

	if _, _, err := engine.Del("t", "b"); err != nil {
		t.Fatalf("Del failed: %v", err)
	}

	seen := map[string]bool{}
	for {
		pair, ok := it.Next()
		if !ok {
			break
		}
		seen[pair.Key] = true
	}

	if seen["b"] {
		t.Error("Iterator returned a key deleted before it was visited")
	}
	if !seen["a"] || !seen["c"] {
		t.Errorf("Iterator lost surviving keys, saw %v", seen)
	}
}
