// Package rpc provides the remote procedure call framework of the tKV
// key-value store. It acts as the communication layer between clients and
// servers, enabling storage operations across network boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the command protocol, configuration structures, TLS helpers
//     and logging.
//
//   - transport: Stream-multiplexed network communication with pluggable
//     implementations (TCP, Unix sockets).
//
//   - serializer: Message serialization with multiple format options
//     (Binary, JSON, GOB) for converting between protocol messages and byte
//     arrays.
//
//   - client: RPC client implementation, including a storage.Storage
//     adapter that lets applications use a remote server like a local
//     engine.
//
//   - server: RPC server components: the per-stream request loop and the
//     state-free command dispatcher.
package rpc
