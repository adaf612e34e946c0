package memory

import (
	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Engine Type
// --------------------------------------------------------------------------

// engine implements storage.Storage with one concurrent hash map per table.
// Synchronization granularity: the xsync maps use internal per-bucket
// locking, so operations on different keys proceed in parallel and a
// single-key Compute is atomic, which is exactly the per-key atomicity
// the Storage contract requires.
type engine struct {
	tables *xsync.MapOf[string, *xsync.MapOf[string, storage.Value]]
}

// New creates a new in-memory storage engine. State is lost on process
// exit; tables are created lazily on first write.
func New() storage.Storage {
	return &engine{
		tables: xsync.NewMapOf[string, *xsync.MapOf[string, storage.Value]](),
	}
}

// Factory returns a storage.EngineFactory for the in-memory engine.
func Factory() storage.EngineFactory {
	return func() (storage.Storage, error) { return New(), nil }
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (e *engine) Get(table, key string) (storage.Value, bool, error) {
	tbl, ok := e.tables.Load(table)
	if !ok {
		return storage.Value{}, false, nil
	}
	value, ok := tbl.Load(key)
	return value, ok, nil
}

func (e *engine) Set(table, key string, value storage.Value) (storage.Value, bool, error) {
	// LoadOrCompute makes table creation race-free: two concurrent first
	// writers observe the same map instance, never two.
	tbl, _ := e.tables.LoadOrCompute(table, func() *xsync.MapOf[string, storage.Value] {
		return xsync.NewMapOf[string, storage.Value]()
	})

	var (
		prev    storage.Value
		existed bool
	)
	tbl.Compute(key, func(old storage.Value, loaded bool) (storage.Value, bool) {
		prev, existed = old, loaded
		return value, false
	})
	return prev, existed, nil
}

func (e *engine) Contains(table, key string) (bool, error) {
	tbl, ok := e.tables.Load(table)
	if !ok {
		return false, nil
	}
	_, ok = tbl.Load(key)
	return ok, nil
}

func (e *engine) Del(table, key string) (storage.Value, bool, error) {
	tbl, ok := e.tables.Load(table)
	if !ok {
		return storage.Value{}, false, nil
	}
	value, ok := tbl.LoadAndDelete(key)
	return value, ok, nil
}

func (e *engine) GetAll(table string) ([]storage.Kvpair, error) {
	tbl, ok := e.tables.Load(table)
	if !ok {
		return []storage.Kvpair{}, nil
	}
	pairs := make([]storage.Kvpair, 0, tbl.Size())
	tbl.Range(func(key string, value storage.Value) bool {
		pairs = append(pairs, storage.NewKvpair(key, value))
		return true
	})
	return pairs, nil
}

func (e *engine) GetIter(table string) (storage.Iterator, error) {
	cursor := &tableCursor{}
	if tbl, ok := e.tables.Load(table); ok {
		cursor.table = tbl
		cursor.keys = make([]string, 0, tbl.Size())
		tbl.Range(func(key string, _ storage.Value) bool {
			cursor.keys = append(cursor.keys, key)
			return true
		})
	}
	return storage.NewIter[tableEntry](cursor, func(e tableEntry) storage.Kvpair {
		return storage.NewKvpair(e.key, e.value)
	}), nil
}

func (e *engine) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Engine-native Cursor
// --------------------------------------------------------------------------

// tableEntry is the engine-native item produced by a tableCursor.
type tableEntry struct {
	key   string
	value storage.Value
}

// tableCursor walks the key set visible at iteration start. Values are
// read lazily at Next time; keys deleted by concurrent writers in the
// meantime are skipped. This gives per-pair visibility, not a whole-table
// point-in-time snapshot.
type tableCursor struct {
	table *xsync.MapOf[string, storage.Value]
	keys  []string
	pos   int
}

func (c *tableCursor) Next() (tableEntry, bool) {
	for c.pos < len(c.keys) {
		key := c.keys[c.pos]
		c.pos++
		if value, ok := c.table.Load(key); ok {
			return tableEntry{key: key, value: value}, true
		}
	}
	return tableEntry{}, false
}
