// Package testing provides standardised tests and benchmarks for engines
// that satisfy the storage.Storage interface.
//
// The package contains:
//   - testing: A conformance suite validating the Storage contract,
//     including the absent-is-not-an-error rule, previous-value semantics
//     of Set/Del, GetAll/GetIter equivalence and the concurrency
//     properties (no lost updates across distinct keys, last-writer-wins
//     on a contended key, race-free table creation)
//   - benchmark: Performance tests for measuring throughput of common
//     storage operations
//
// Example usage:
//
//	// Running the standard test suite against an engine
//	sttesting.RunStorageTests(t, "memory", memory.Factory())
//
//	// Running performance benchmarks
//	sttesting.RunStorageBenchmarks(b, "memory", memory.Factory())
package testing
