// Package tcp implements TCP socket-based transport for the key-value store's
// RPC system. It provides concrete implementations of the base package's connector
// interfaces optimized for TCP connections.
//
// This package builds on the base package's transport functionality, inheriting
// its stream multiplexing, connection pooling and reconnection logic. See the
// base package documentation for detailed information on the underlying
// transport mechanisms.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// Both connectors apply the socket tuning from the transport configuration
// (Nagle's algorithm, keep-alive, linger, kernel buffer sizes) to every raw
// connection. When TLS is enabled in the configuration, the base transport
// wraps the tuned connection before any frame is exchanged.
package tcp
