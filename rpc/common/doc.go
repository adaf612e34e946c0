// Package common provides core data structures and utilities shared across
// the tKV RPC system. It defines fundamental types, configuration
// structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - The command protocol (CommandRequest / CommandResponse) spoken
//     between client and server
//   - Configuration structures for client and server components
//   - Named, leveled logging built on hclog
//   - TLS configuration helpers for the optional transport encryption
//
// Key Components:
//
//   - CommandRequest: One operation of the command protocol (HSET, HGET,
//     HGETALL, HDEL, HEXIST) with its table and key/value arguments.
//     Factory functions build each variant.
//
//   - CommandResponse: The result of one request: an HTTP-like status
//     code, the returned values and an optional error message. An absent
//     key is status 404 with empty values; engine failures are 5xx with
//     the error description - they never tear down the stream.
//
//   - ServerConfig / ClientConfig: Configuration for both endpoints,
//     covering engine selection, transport endpoint(s), socket tuning,
//     timeouts and TLS file paths.
//
//   - Logger: Named logger factory providing consistent, leveled output
//     across the application.
package common
