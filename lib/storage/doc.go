// Package storage defines the storage capability of tKV: a uniform,
// table-scoped key-value contract that multiple physical engines satisfy,
// together with the wire-agnostic data types moved through the system.
//
// The package focuses on:
//   - A unified interface (Storage) for table-scoped key-value operations
//     across different backends
//   - The Value tagged union and Kvpair types shared by engines, the
//     command dispatcher and the RPC layer
//   - A generic iterator adapter (Iter) that turns any engine-native
//     cursor into the canonical lazy Kvpair sequence
//
// Key Components:
//
//   - Storage Interface: The core abstraction defining get/set/contains/
//     del plus the whole-table GetAll and GetIter operations. All engines
//     share this interface, so a server can switch between backends
//     without code changes. The error return is reserved for engine
//     failures; an absent key or table is a normal result, never an error.
//
//   - Value / Kvpair: Value is an immutable tagged union over string,
//     bytes, int64, float64 and bool with a binary codec (EncodeValue /
//     DecodeValue) shared by the durable engine's on-disk format and the
//     binary message serializer. Kvpair carries one scanned pair, with
//     ComparePairs providing the deterministic ordering used by tests.
//
//   - Iter Adapter: A generic wrapper parameterized by the engine-native
//     item type and a per-item conversion function. It is lazy, finite and
//     single-pass, so engines expose GetIter without duplicating
//     conversion logic or materializing tables upfront.
//
// Implementations:
//
//	The repository includes two implementations of the Storage interface:
//
//	- Memory Engine (memory): A concurrent in-memory implementation built
//	  on xsync maps. State is lost on process exit. Available in the
//	  "github.com/ValentinKolb/tKV/lib/storage/memory" package.
//
//	- Durable Engine (badgerdb): A disk-backed implementation on top of
//	  the embedded Badger store, namespacing tables by key prefix so data
//	  survives restarts. Available in the
//	  "github.com/ValentinKolb/tKV/lib/storage/badgerdb" package.
package storage
