// Package memory provides the concurrent in-memory implementation of the
// storage.Storage capability. Each table is an independently synchronized
// xsync map, so readers and writers on different keys never contend and
// table creation on first write is race-free. The engine keeps no state
// on disk; everything is lost on process exit.
package memory
