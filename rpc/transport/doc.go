// Package transport defines the interfaces and abstractions for RPC communication
// in the key-value store. It provides a common contract that all transport
// implementations must fulfill, enabling protocol-agnostic communication.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Multiplexing many independent logical streams over few connections
//   - Enabling multiple transport implementations (TCP, Unix sockets)
//
// Key Components:
//
//   - IStream: A bidirectional, ordered message stream. All request/response
//     traffic between client and server flows through streams, so unrelated
//     commands never block each other even when they share a connection.
//
//   - IRPCClientTransport: Interface for client-side transport implementations
//     that handles connection management and stream creation.
//
//   - IRPCServerTransport: Interface for server-side transport implementations
//     that accepts connections and dispatches incoming streams to a handler.
//
//   - StreamHandleFunc: Function type invoked once per incoming stream.
package transport
