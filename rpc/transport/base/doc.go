// Package base provides a foundation for transport layers in the key-value store,
// implementing stream multiplexing for RPC communication independent of the
// specific network protocol (TCP, Unix sockets, etc.). It serves as a base layer
// that can be extended with protocol-specific connectors.
//
// The package focuses on:
//   - Protocol-agnostic client and server transport implementations
//   - Multiplexing many logical streams over a single connection
//   - Frame-based wire protocol with stream ID tracking
//   - Robust error handling with reconnection logic
//
// Wire Protocol:
//
// Every message travels in a frame with a fixed 13 byte header followed by the
// payload: the stream ID (8 bytes, big endian), a flags byte and the payload
// length (4 bytes, big endian). A frame with the FIN flag set closes its
// logical stream; the connection and all other streams stay untouched.
//
// Streams are opened implicitly by the client. The client allocates stream IDs
// from an atomic counter, and the server creates its stream endpoint when the
// first frame with an unknown ID arrives. Opening a stream therefore costs no
// network round trip.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific
//     operations that allow extending the base transport with different
//     network protocols.
//
//   - clientTransport: Core client implementation that manages a pool of
//     connections with round-robin stream placement. Supports multiple
//     connections per endpoint for improved throughput.
//
//   - serverSession: Core server implementation for one accepted connection.
//     A single read loop demultiplexes frames onto per-stream queues, and
//     every stream is served by its own handler goroutine.
//
// Isolation:
//
// A slow or stuck stream can never block the rest of its connection. Inbound
// messages are queued per stream, and a stream whose queue overflows is closed
// instead of backpressuring the shared read loop. Writes from concurrent
// streams are serialized through a per-connection mutex, and frames are
// written with net.Buffers so header and payload go out in a single syscall.
//
// Connection failure terminates every stream that was open on that connection
// with an error. The client then tries to restore the connection for future
// streams; in-flight streams are not resumed and callers decide themselves
// whether to retry.
//
// Thread Safety:
//
//	All public methods are thread-safe. A single IStream, however, is owned
//	by one goroutine at a time; callers that share a stream must serialize
//	access themselves.
package base
