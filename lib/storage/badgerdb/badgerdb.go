package badgerdb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ValentinKolb/tKV/lib/storage"
	"github.com/dgraph-io/badger/v3"
	"github.com/hashicorp/go-hclog"
)

// --------------------------------------------------------------------------
// Constants and Options
// --------------------------------------------------------------------------

// tableSeparator joins the table name and the key into the physical key
// stored in Badger. NUL is documented as part of the on-disk format: table
// names must not contain it (keys may - the prefix is stripped by length,
// not by searching for the separator).
const tableSeparator = "\x00"

// Options configures the Badger-backed engine.
type Options struct {
	// Dir is the directory Badger stores its LSM tree and value log in.
	Dir string
	// SyncWrites forces every write to be flushed to disk before it is
	// acknowledged. Durability tuning is a deployment concern; per-key
	// atomicity holds either way.
	SyncWrites bool
	// Logger receives Badger's internal log output. Defaults to the
	// process default logger.
	Logger hclog.Logger
}

// DefaultOptions returns the default engine options for the given directory.
func DefaultOptions(dir string) Options {
	return Options{Dir: dir}
}

// --------------------------------------------------------------------------
// Engine Type
// --------------------------------------------------------------------------

// engine implements storage.Storage on top of an embedded Badger store.
// Tables are namespaced by prefixing every physical key with the table
// name plus tableSeparator; scans are prefix scans over that namespace.
type engine struct {
	db     *badger.DB
	logger hclog.Logger
}

// New opens (or creates) the Badger store in opts.Dir and returns the
// durable engine backed by it.
func New(opts Options) (storage.Storage, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("badgerdb: dir is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.Default()
	}

	badgerOpts := badger.DefaultOptions(opts.Dir)
	badgerOpts.SyncWrites = opts.SyncWrites
	badgerOpts.Logger = &badgerLogger{logger: logger.Named("badger")}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("badgerdb: open db: %w", err)
	}

	return &engine{db: db, logger: logger}, nil
}

// Factory returns a storage.EngineFactory for the durable engine.
func Factory(opts Options) storage.EngineFactory {
	return func() (storage.Storage, error) { return New(opts) }
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (e *engine) Get(table, key string) (storage.Value, bool, error) {
	physical, err := physicalKey(table, key)
	if err != nil {
		return storage.Value{}, false, err
	}

	var (
		value storage.Value
		found bool
	)
	err = e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(physical)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value, _, err = storage.DecodeValue(raw)
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return storage.Value{}, false, fmt.Errorf("badgerdb: get: %w", err)
	}
	return value, found, nil
}

func (e *engine) Set(table, key string, value storage.Value) (storage.Value, bool, error) {
	physical, err := physicalKey(table, key)
	if err != nil {
		return storage.Value{}, false, err
	}
	encoded := storage.EncodeValue(value)

	var (
		prev    storage.Value
		existed bool
	)
	// Read-modify-write inside one transaction. Badger's conflict
	// detection aborts one of two racing writers on the same key, so
	// retry until the transaction commits - the result is a clean
	// last-writer-wins order, never a partial write.
	for {
		err := e.db.Update(func(txn *badger.Txn) error {
			prev, existed = storage.Value{}, false
			if old, err := readValue(txn, physical); err != nil {
				return err
			} else if old != nil {
				prev, existed = *old, true
			}
			return txn.Set(physical, encoded)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return storage.Value{}, false, fmt.Errorf("badgerdb: set: %w", err)
		}
		return prev, existed, nil
	}
}

func (e *engine) Contains(table, key string) (bool, error) {
	physical, err := physicalKey(table, key)
	if err != nil {
		return false, err
	}

	var found bool
	err = e.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(physical)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badgerdb: contains: %w", err)
	}
	return found, nil
}

func (e *engine) Del(table, key string) (storage.Value, bool, error) {
	physical, err := physicalKey(table, key)
	if err != nil {
		return storage.Value{}, false, err
	}

	var (
		prev    storage.Value
		existed bool
	)
	for {
		err := e.db.Update(func(txn *badger.Txn) error {
			prev, existed = storage.Value{}, false
			old, err := readValue(txn, physical)
			if err != nil {
				return err
			}
			if old == nil {
				// Absent key or table: no-op, not an error.
				return nil
			}
			prev, existed = *old, true
			return txn.Delete(physical)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return storage.Value{}, false, fmt.Errorf("badgerdb: del: %w", err)
		}
		return prev, existed, nil
	}
}

func (e *engine) GetAll(table string) ([]storage.Kvpair, error) {
	prefix, err := tablePrefix(table)
	if err != nil {
		return nil, err
	}

	pairs := []storage.Kvpair{}
	err = e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(prefix):])
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			value, _, err := storage.DecodeValue(raw)
			if err != nil {
				return err
			}
			pairs = append(pairs, storage.NewKvpair(key, value))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badgerdb: get all: %w", err)
	}
	return pairs, nil
}

// GetIter opens a read transaction that stays open for the cursor's
// lifetime and is released once the iterator is exhausted. Callers are
// expected to drain the iterator.
func (e *engine) GetIter(table string) (storage.Iterator, error) {
	prefix, err := tablePrefix(table)
	if err != nil {
		return nil, err
	}

	txn := e.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	it.Seek(prefix)

	cursor := &prefixCursor{txn: txn, it: it, prefix: prefix, logger: e.logger}
	return storage.NewIter[prefixEntry](cursor, func(e prefixEntry) storage.Kvpair {
		return storage.NewKvpair(e.key, e.value)
	}), nil
}

func (e *engine) Close() error {
	return e.db.Close()
}

// --------------------------------------------------------------------------
// Engine-native Cursor
// --------------------------------------------------------------------------

// prefixEntry is the engine-native item produced by a prefixCursor.
type prefixEntry struct {
	key   string
	value storage.Value
}

// prefixCursor walks one table's namespace of the Badger store. Entries
// whose stored bytes cannot be decoded are skipped (and logged); the
// transaction is discarded as soon as the prefix range is exhausted.
type prefixCursor struct {
	txn    *badger.Txn
	it     *badger.Iterator
	prefix []byte
	logger hclog.Logger
	done   bool
}

func (c *prefixCursor) Next() (prefixEntry, bool) {
	if c.done {
		return prefixEntry{}, false
	}
	for c.it.ValidForPrefix(c.prefix) {
		item := c.it.Item()
		key := string(item.Key()[len(c.prefix):])
		raw, err := item.ValueCopy(nil)
		c.it.Next()
		if err != nil {
			c.logger.Warn("skipping unreadable entry during scan", "key", key, "error", err)
			continue
		}
		value, _, err := storage.DecodeValue(raw)
		if err != nil {
			c.logger.Warn("skipping undecodable entry during scan", "key", key, "error", err)
			continue
		}
		return prefixEntry{key: key, value: value}, true
	}
	c.close()
	return prefixEntry{}, false
}

func (c *prefixCursor) close() {
	if c.done {
		return
	}
	c.done = true
	c.it.Close()
	c.txn.Discard()
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// readValue reads and decodes the value stored under the physical key
// within the given transaction. It returns nil (and no error) when the
// key is absent.
func readValue(txn *badger.Txn, physical []byte) (*storage.Value, error) {
	item, err := txn.Get(physical)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	value, _, err := storage.DecodeValue(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// physicalKey builds the namespaced key stored in Badger.
func physicalKey(table, key string) ([]byte, error) {
	prefix, err := tablePrefix(table)
	if err != nil {
		return nil, err
	}
	return append(prefix, key...), nil
}

// tablePrefix returns the namespace prefix for a table.
func tablePrefix(table string) ([]byte, error) {
	if strings.Contains(table, tableSeparator) {
		return nil, fmt.Errorf("badgerdb: table name must not contain the NUL separator")
	}
	prefix := make([]byte, 0, len(table)+len(tableSeparator))
	prefix = append(prefix, table...)
	prefix = append(prefix, tableSeparator...)
	return prefix, nil
}

// --------------------------------------------------------------------------
// Badger Logger Bridge
// --------------------------------------------------------------------------

// badgerLogger adapts hclog to Badger's logger interface.
type badgerLogger struct {
	logger hclog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
