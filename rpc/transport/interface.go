package transport

import (
	"github.com/ValentinKolb/tKV/rpc/common"
)

// --------------------------------------------------------------------------
// Logical Streams
// --------------------------------------------------------------------------

// IStream is a bidirectional, ordered message stream multiplexed over a
// single network connection. Messages sent on one stream never interleave
// with messages of another stream, and both sides observe them in send order.
//
// A stream is not safe for concurrent use by multiple goroutines. Callers
// that share a stream must serialize access themselves.
type IStream interface {
	// Recv blocks until the next message arrives on this stream.
	// It returns io.EOF once the peer has closed the stream.
	Recv() (msg []byte, err error)
	// Send transmits a message on this stream
	Send(msg []byte) error
	// Close closes this logical stream. The underlying connection and all
	// other streams multiplexed over it stay alive. Close is idempotent.
	Close() error
}

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// StreamHandleFunc is called by a server transport once for every logical
// stream a client opens. It runs in its own goroutine and owns the stream
// until it returns; the transport closes the stream afterwards.
type StreamHandleFunc func(stream IStream)

// IRPCServerTransport is the interface for the RPC server transport layer
// It must accept a RPCServerConfig as a parameter
type IRPCServerTransport interface {
	// RegisterHandler registers the handler for incoming streams
	// This handler must be set before Listen is called
	RegisterHandler(handler StreamHandleFunc)
	// Listen starts the transport layer and accepts connections until the
	// listener fails. Each connection may carry many concurrent streams.
	Listen(config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// OpenStream opens a new logical stream on one of the pooled
	// connections. Opening is implicit and costs no network round trip:
	// the server learns about the stream with its first message.
	OpenStream() (IStream, error)
	// Close closes all connections and terminates every open stream
	Close() error
}
