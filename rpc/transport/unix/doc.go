// Package unix implements Unix domain socket-based transport for the key-value
// store's RPC system. It provides concrete implementations of the base package's
// connector interfaces for local inter-process communication.
//
// Unix sockets avoid the TCP/IP stack entirely and are the fastest option when
// client and server run on the same host. The listener removes a stale socket
// file before binding, so restarts do not require manual cleanup.
//
// Key Components:
//
//   - clientConnector: Unix socket implementation of base.IClientConnector
//
//   - serverConnector: Unix socket implementation of base.IServerConnector
package unix
