package storage

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// EngineFactory is a function type that creates a new storage engine.
// This is used to abstract the creation of the engine from the code wiring
// it into a server, and it lets test suites run against any implementation.
type EngineFactory func() (Storage, error)

// Storage is the capability every engine must satisfy: table-scoped
// get/set/delete/scan over string keys. A table exists as soon as one key
// has been set into it; reading or deleting against an absent table behaves
// exactly like reading or deleting an absent key.
//
// Error contract: the error return is reserved for unrecoverable engine
// failures (I/O errors, corruption, encoding errors). "Not found" is never
// an error - it is reported through the ok/found boolean with a zero Value.
//
// Thread-safety: implementations must support concurrent calls from any
// number of goroutines without external locking. Per-key mutations are
// atomic (Set observes the previous value and installs the new one as one
// indivisible step relative to other operations on the same key). No
// cross-key or cross-table atomicity is guaranteed.
type Storage interface {
	// Get returns the value stored under (table, key).
	// The boolean reports whether the key was found.
	Get(table, key string) (Value, bool, error)

	// Set stores value under (table, key), creating the table if it does
	// not exist yet. It returns the previous value and whether one existed.
	Set(table, key string, value Value) (Value, bool, error)

	// Contains reports whether (table, key) is set.
	Contains(table, key string) (bool, error)

	// Del removes (table, key) and returns the removed value and whether
	// one existed. Deleting an absent key or table is a no-op, not an error.
	Del(table, key string) (Value, bool, error)

	// GetAll materializes every pair of the table at call time. The order
	// is unspecified. An absent table yields an empty slice.
	GetAll(table string) ([]Kvpair, error)

	// GetIter returns a lazy iterator over the table's pairs. It is finite
	// and single-pass, and reflects the table state visible at iteration
	// start with per-pair visibility under concurrent writers (not a
	// point-in-time snapshot).
	GetIter(table string) (Iterator, error)

	// Close shuts the engine down and releases its resources.
	Close() error
}

// --------------------------------------------------------------------------
// Iterator Adapter
// --------------------------------------------------------------------------

// Iterator is the canonical lazy sequence of Kvpair produced by GetIter.
type Iterator interface {
	// Next returns the next pair. The boolean is false once the sequence
	// is exhausted; after that every call returns false.
	Next() (Kvpair, bool)
}

// Source is any engine-native cursor whose items can be converted into
// Kvpairs. Engines implement this once and wrap it with NewIter instead
// of duplicating conversion logic.
type Source[T any] interface {
	// Next returns the next native item, false when exhausted.
	Next() (T, bool)
}

// Iter adapts a Source[T] into the canonical Iterator. It performs a
// one-to-one per-item conversion with no buffering: consuming the adapter
// drives the underlying cursor exactly once, in lockstep.
type Iter[T any] struct {
	src  Source[T]
	conv func(T) Kvpair
}

// NewIter creates an Iter over the given cursor and conversion function.
func NewIter[T any](src Source[T], conv func(T) Kvpair) *Iter[T] {
	return &Iter[T]{src: src, conv: conv}
}

// Next implements the Iterator interface.
func (it *Iter[T]) Next() (Kvpair, bool) {
	item, ok := it.src.Next()
	if !ok {
		return Kvpair{}, false
	}
	return it.conv(item), true
}

// Collect drains an Iterator into a slice. Intended for tests and for
// callers that explicitly want materialization.
func Collect(it Iterator) []Kvpair {
	var pairs []Kvpair
	for {
		pair, ok := it.Next()
		if !ok {
			return pairs
		}
		pairs = append(pairs, pair)
	}
}
