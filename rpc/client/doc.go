// Package client implements the RPC client for the key-value store. It
// executes commands over logical streams and can expose a remote server
// behind the same storage interface local engines implement.
//
// The package focuses on:
//   - Strictly ordered request/response execution per stream
//   - Parallelism through concurrent streams instead of pipelining
//   - Location transparency via the storage.Storage adapter
//
// Key Components:
//
//   - RPCClient: Connects a stream transport and hands out ClientStreams.
//
//   - ClientStream: Executes commands on one logical stream. One Execute is
//     exactly one request frame followed by exactly one response frame.
//
//   - NewRPCStorage: Factory function creating a storage.Storage that
//     forwards every operation to a remote server. Code written against the
//     storage interface works unchanged whether the engine is in-process or
//     behind the network.
//
// Usage Example:
//
//	st, err := client.NewRPCStorage(
//	  common.ClientConfig{
//	    TimeoutSecond: 5,
//	    Transport: common.ClientTransportConfig{
//	      Endpoints: []string{"localhost:8080"},
//	    },
//	  },
//	  tcp.NewTCPClientTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//	if err != nil {
//	  log.Fatalf("client error: %v", err)
//	}
//	defer st.Close()
//
//	prev, existed, err := st.Set("t1", "hello", storage.NewStringValue("world"))
//
// Error Handling:
//
// Absent keys are never errors, they surface through the found/existed
// booleans exactly like on a local engine. Server-side failures (5xx
// responses) and transport failures are returned as errors. Nothing is
// retried silently; retry policy belongs to the caller.
package client
