package badgerdb

import (
	"testing"

	"github.com/ValentinKolb/tKV/lib/storage"
	sttesting "github.com/ValentinKolb/tKV/lib/storage/testing"
	"github.com/hashicorp/go-hclog"
)

func testOptions(tb testing.TB) Options {
	opts := DefaultOptions(tb.TempDir())
	opts.Logger = hclog.NewNullLogger()
	return opts
}

func Test(t *testing.T) {
	sttesting.RunStorageTests(t, "Badger", Factory(testOptions(t)))
}

func Benchmark(b *testing.B) {
	sttesting.RunStorageBenchmarks(b, "Badger", Factory(testOptions(b)))
}

// Data written by one engine instance must be visible after reopening
// the same directory.
func TestPersistenceAcrossReopen(t *testing.T) {
	opts := testOptions(t)

	engine, err := New(opts)
	if err != nil {
		t.Fatalf("Failed to open engine: %v", err)
	}
	if _, _, err := engine.Set("t1", "hello", storage.NewStringValue("world")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	engine, err = New(opts)
	if err != nil {
		t.Fatalf("Failed to reopen engine: %v", err)
	}
	defer engine.Close()

	value, found, err := engine.Get("t1", "hello")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || !value.Equal(storage.NewStringValue("world")) {
		t.Errorf("Expected %q after reopen, got found=%t value=%v", "world", found, value)
	}
}

// The NUL namespace separator keeps tables apart even when one table
// name is a prefix of another.
func TestTableNamespacing(t *testing.T) {
	engine, err := New(testOptions(t))
	if err != nil {
		t.Fatalf("Failed to open engine: %v", err)
	}
	defer engine.Close()

	if _, _, err := engine.Set("tab", "k", storage.NewStringValue("short")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, _, err := engine.Set("table", "k", storage.NewStringValue("long")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	pairs, err := engine.GetAll("tab")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("Expected exactly one pair in table 'tab', got %v", pairs)
	}
	if got := pairs[0].Value.String(); got != "short" {
		t.Errorf("Table 'tab' leaked data from 'table': got %q", got)
	}
}

// Table names containing the on-disk separator are rejected as an engine
// error rather than silently corrupting the namespace.
func TestTableNameWithSeparatorRejected(t *testing.T) {
	engine, err := New(testOptions(t))
	if err != nil {
		t.Fatalf("Failed to open engine: %v", err)
	}
	defer engine.Close()

	if _, _, err := engine.Set("bad\x00name", "k", storage.NewStringValue("v")); err == nil {
		t.Error("Expected an error for a table name containing NUL")
	}

	// Keys may contain NUL; only the table name is restricted.
	if _, _, err := engine.Set("t", "k\x00ey", storage.NewStringValue("v")); err != nil {
		t.Errorf("Key containing NUL should be allowed, got %v", err)
	}
	value, found, err := engine.Get("t", "k\x00ey")
	if err != nil || !found || value.String() != "v" {
		t.Errorf("Failed to read back key containing NUL: found=%t value=%v err=%v", found, value, err)
	}
}
