// Package badgerdb provides the durable implementation of the
// storage.Storage capability on top of the embedded Badger store.
//
// On-disk format: every pair of table T with key K is stored under the
// physical key T + "\x00" + K, with the value encoded by the binary codec
// of the storage package. The NUL separator is part of the format; table
// names therefore must not contain NUL. Whole-table reads are prefix
// scans over the table's namespace with the prefix stripped before pairs
// are returned.
//
// Set and Del are single Badger transactions doing a read-modify-write,
// which gives the per-key atomicity the Storage contract requires; racing
// writers on the same key are serialized by retrying aborted transactions.
// Flush-to-disk behavior is controlled by Options.SyncWrites and is a
// deployment concern, not part of the contract.
package badgerdb
