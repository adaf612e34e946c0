package testing

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/ValentinKolb/tKV/lib/storage"
)

// RunStorageTests runs a comprehensive conformance suite for a
// storage.Storage implementation. Every engine must pass this suite
// unchanged - the contract does not bend per backend.
func RunStorageTests(t *testing.T, name string, factory storage.EngineFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("BasicInterface", func(t *testing.T) {
			testBasicInterface(t, mustCreate(t, factory))
		})

		t.Run("GetAll", func(t *testing.T) {
			testGetAll(t, mustCreate(t, factory))
		})

		t.Run("GetIter", func(t *testing.T) {
			testGetIter(t, mustCreate(t, factory))
		})

		t.Run("IterMatchesGetAll", func(t *testing.T) {
			testIterMatchesGetAll(t, mustCreate(t, factory))
		})

		t.Run("ValueKinds", func(t *testing.T) {
			testValueKinds(t, mustCreate(t, factory))
		})

		t.Run("ConcurrentDistinctKeys", func(t *testing.T) {
			testConcurrentDistinctKeys(t, mustCreate(t, factory))
		})

		t.Run("ConcurrentSameKey", func(t *testing.T) {
			testConcurrentSameKey(t, mustCreate(t, factory))
		})

		t.Run("ConcurrentTableCreation", func(t *testing.T) {
			testConcurrentTableCreation(t, mustCreate(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// mustCreate builds a fresh engine and registers its shutdown.
func mustCreate(t *testing.T, factory storage.EngineFactory) storage.Storage {
	t.Helper()
	engine, err := factory()
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	t.Cleanup(func() {
		if err := engine.Close(); err != nil {
			t.Errorf("Failed to close engine: %v", err)
		}
	})
	return engine
}

// sortedPairs returns a copy of pairs in deterministic order.
func sortedPairs(pairs []storage.Kvpair) []storage.Kvpair {
	sorted := slices.Clone(pairs)
	slices.SortFunc(sorted, storage.ComparePairs)
	return sorted
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testBasicInterface(t *testing.T, engine storage.Storage) {
	// The first Set on a fresh (table, key) creates the table and
	// reports no previous value.
	prev, existed, err := engine.Set("t1", "hello", storage.NewStringValue("world"))
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if existed {
		t.Errorf("Expected no previous value on first Set, got %v", prev)
	}

	// A second Set on the same key overwrites and returns the old value.
	prev, existed, err = engine.Set("t1", "hello", storage.NewStringValue("world1"))
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !existed {
		t.Error("Expected previous value on second Set")
	}
	if !prev.Equal(storage.NewStringValue("world")) {
		t.Errorf("Expected previous value %q, got %v", "world", prev)
	}

	// Get on an existing key returns the latest value.
	value, found, err := engine.Get("t1", "hello")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || !value.Equal(storage.NewStringValue("world1")) {
		t.Errorf("Expected %q, got found=%t value=%v", "world1", found, value)
	}

	// Get on an absent key or absent table is a normal absent result.
	if _, found, err := engine.Get("t1", "hello1"); err != nil || found {
		t.Errorf("Expected absent result for missing key, got found=%t err=%v", found, err)
	}
	if _, found, err := engine.Get("t2", "hello1"); err != nil || found {
		t.Errorf("Expected absent result for missing table, got found=%t err=%v", found, err)
	}

	// Contains mirrors the key's presence, never errors on absence.
	if ok, err := engine.Contains("t1", "hello"); err != nil || !ok {
		t.Errorf("Expected Contains true, got ok=%t err=%v", ok, err)
	}
	if ok, err := engine.Contains("t1", "hello1"); err != nil || ok {
		t.Errorf("Expected Contains false for missing key, got ok=%t err=%v", ok, err)
	}
	if ok, err := engine.Contains("t2", "hello"); err != nil || ok {
		t.Errorf("Expected Contains false for missing table, got ok=%t err=%v", ok, err)
	}

	// Del on an existing key returns the removed value.
	prev, existed, err = engine.Del("t1", "hello")
	if err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if !existed || !prev.Equal(storage.NewStringValue("world1")) {
		t.Errorf("Expected removed value %q, got existed=%t value=%v", "world1", existed, prev)
	}

	// Del on an absent key or table is a no-op, not an error.
	if _, existed, err := engine.Del("t1", "hello"); err != nil || existed {
		t.Errorf("Expected absent result for repeated Del, got existed=%t err=%v", existed, err)
	}
	if _, existed, err := engine.Del("t1", "hello1"); err != nil || existed {
		t.Errorf("Expected absent result for Del of missing key, got existed=%t err=%v", existed, err)
	}
	if _, existed, err := engine.Del("t2", "hello"); err != nil || existed {
		t.Errorf("Expected absent result for Del on missing table, got existed=%t err=%v", existed, err)
	}
}

func testGetAll(t *testing.T, engine storage.Storage) {
	if _, _, err := engine.Set("t2", "k1", storage.NewStringValue("v1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, _, err := engine.Set("t2", "k2", storage.NewStringValue("v2")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	pairs, err := engine.GetAll("t2")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	expected := []storage.Kvpair{
		storage.NewKvpair("k1", storage.NewStringValue("v1")),
		storage.NewKvpair("k2", storage.NewStringValue("v2")),
	}
	if got := sortedPairs(pairs); !slices.EqualFunc(got, expected, equalPair) {
		t.Errorf("Expected pairs %v, got %v", expected, got)
	}

	// An absent table yields an empty snapshot.
	pairs, err = engine.GetAll("no-such-table")
	if err != nil {
		t.Fatalf("GetAll on absent table failed: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("Expected empty snapshot for absent table, got %v", pairs)
	}
}

func testGetIter(t *testing.T, engine storage.Storage) {
	if _, _, err := engine.Set("t2", "k1", storage.NewStringValue("v1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, _, err := engine.Set("t2", "k2", storage.NewStringValue("v2")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	it, err := engine.GetIter("t2")
	if err != nil {
		t.Fatalf("GetIter failed: %v", err)
	}

	expected := []storage.Kvpair{
		storage.NewKvpair("k1", storage.NewStringValue("v1")),
		storage.NewKvpair("k2", storage.NewStringValue("v2")),
	}
	if got := sortedPairs(storage.Collect(it)); !slices.EqualFunc(got, expected, equalPair) {
		t.Errorf("Expected pairs %v, got %v", expected, got)
	}

	// The iterator is single-pass: once exhausted it stays exhausted.
	if _, ok := it.Next(); ok {
		t.Error("Expected exhausted iterator to keep returning false")
	}

	// An absent table yields an immediately exhausted iterator.
	it, err = engine.GetIter("no-such-table")
	if err != nil {
		t.Fatalf("GetIter on absent table failed: %v", err)
	}
	if _, ok := it.Next(); ok {
		t.Error("Expected empty iterator for absent table")
	}
}

func testIterMatchesGetAll(t *testing.T, engine storage.Storage) {
	for i := 0; i < 32; i++ {
		key := fmt.Sprintf("key-%03d", i)
		if _, _, err := engine.Set("t3", key, storage.NewIntValue(int64(i))); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	all, err := engine.GetAll("t3")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	it, err := engine.GetIter("t3")
	if err != nil {
		t.Fatalf("GetIter failed: %v", err)
	}

	// GetAll and GetIter must agree as multisets; order is not part of
	// the contract.
	a, b := sortedPairs(all), sortedPairs(storage.Collect(it))
	if !slices.EqualFunc(a, b, equalPair) {
		t.Errorf("GetAll and GetIter disagree:\nGetAll:  %v\nGetIter: %v", a, b)
	}
}

func testValueKinds(t *testing.T, engine storage.Storage) {
	values := map[string]storage.Value{
		"str":   storage.NewStringValue("hello"),
		"bytes": storage.NewBytesValue([]byte{0x00, 0x01, 0xff}),
		"int":   storage.NewIntValue(-42),
		"float": storage.NewFloatValue(3.25),
		"bool":  storage.NewBoolValue(true),
	}

	for key, value := range values {
		if _, _, err := engine.Set("kinds", key, value); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}
	for key, expected := range values {
		got, found, err := engine.Get("kinds", key)
		if err != nil {
			t.Fatalf("Get %s failed: %v", key, err)
		}
		if !found || !got.Equal(expected) {
			t.Errorf("Key %s: expected %v, got found=%t value=%v", key, expected, found, got)
		}
	}
}

func testConcurrentDistinctKeys(t *testing.T, engine storage.Storage) {
	const writers = 64

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%03d", i)
			if _, _, err := engine.Set("conc", key, storage.NewIntValue(int64(i))); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent Set failed: %v", err)
	}

	// Every write must be independently observable - no lost updates.
	for i := 0; i < writers; i++ {
		key := fmt.Sprintf("key-%03d", i)
		value, found, err := engine.Get("conc", key)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !found {
			t.Errorf("Key %s lost", key)
			continue
		}
		if got, _ := value.AsInt(); got != int64(i) {
			t.Errorf("Key %s: expected %d, got %d", key, i, got)
		}
	}
}

func testConcurrentSameKey(t *testing.T, engine storage.Storage) {
	const writers = 64

	attempted := make([]storage.Value, writers)
	for i := range attempted {
		attempted[i] = storage.NewStringValue(fmt.Sprintf("value-%03d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, _, err := engine.Set("conc", "contended", attempted[i]); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent Set failed: %v", err)
	}

	// The key must hold exactly one of the attempted values, never a
	// corrupted or partial one.
	value, found, err := engine.Get("conc", "contended")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("Contended key lost entirely")
	}
	if !slices.ContainsFunc(attempted, value.Equal) {
		t.Errorf("Key holds %v, which is none of the attempted values", value)
	}
}

func testConcurrentTableCreation(t *testing.T, engine storage.Storage) {
	const writers = 32

	// All writers hit a table none of them has seen before; the racing
	// first writes must neither create two tables nor lose an update.
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%03d", i)
			_, _, _ = engine.Set("fresh", key, storage.NewIntValue(int64(i)))
		}(i)
	}
	wg.Wait()

	pairs, err := engine.GetAll("fresh")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(pairs) != writers {
		t.Errorf("Expected %d pairs after concurrent table creation, got %d", writers, len(pairs))
	}
}

func equalPair(a, b storage.Kvpair) bool {
	return storage.ComparePairs(a, b) == 0
}
