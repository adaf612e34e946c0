// Package server implements the RPC server of the key-value store. It ties
// a storage engine, a serializer and a stream transport together and serves
// the command protocol until the process stops.
//
// The package focuses on:
//   - One independent request loop per incoming logical stream
//   - State-free command dispatch against the shared storage engine
//   - Converting every failure into a response the client can inspect
//
// Key Components:
//
//   - Dispatch: Maps one CommandRequest to exactly one storage operation and
//     the outcome to a CommandResponse. Engine failures become 5xx responses,
//     absent keys become 404, malformed commands become 400 without touching
//     the engine.
//
//   - NewRPCServer: Factory function creating a configured server with the
//     specified transport, serializer and storage engine.
//
// Usage Example:
//
//	engine, err := memory.New()
//	if err != nil {
//	  log.Fatalf("engine error: %v", err)
//	}
//
//	s := server.NewRPCServer(
//	  common.ServerConfig{
//	    TimeoutSecond: 5,
//	    LogLevel:      "info",
//	    Transport:     common.ServerTransportConfig{Endpoint: "0.0.0.0:8080"},
//	  },
//	  tcp.NewTCPServerTransport(),
//	  serializer.NewBinarySerializer(),
//	  engine,
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("server error: %v", err)
//	}
//
// Error Handling:
//
// A frame that cannot be decoded closes only its logical stream; the
// connection and all other streams keep working. An engine failure never
// ends a stream or the process, it is answered with a 500 response and the
// loop continues with the next request.
//
// Metrics:
//
// The server counts requests per command and status and tracks dispatch
// latency. When MetricsEndpoint is configured the collected metrics are
// exposed over HTTP in Prometheus text format.
//
// Thread Safety:
//
//	The server is thread-safe and handles concurrent streams across multiple
//	connections. Each stream is processed independently. The Serve method
//	should be called only once.
package server
