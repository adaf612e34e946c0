package client

import (
	"fmt"
	"sync"

	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/transport"
)

var Logger = common.GetLogger("client")

// RPCClient talks the command protocol over a stream transport. It is safe
// for concurrent use; every command travels on a logical stream and
// independent streams run in parallel even on a shared connection.
type RPCClient struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// NewRPCClient creates a new RPC client and connects the transport.
//
// Usage:
//
//	c, err := client.NewRPCClient(
//		config,
//		tcp.NewTCPClientTransport(),
//		serializer.NewBinarySerializer(),
//	)
//	if err != nil {
//		panic(err)
//	}
//	defer c.Close()
//
//	stream, err := c.OpenStream()
//	...
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*RPCClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, fmt.Errorf("failed to connect transport: %w", err)
	}

	return &RPCClient{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

// OpenStream opens a new logical stream for a sequence of commands.
// The caller must close the stream when done with it.
func (c *RPCClient) OpenStream() (*ClientStream, error) {
	stream, err := c.transport.OpenStream()
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	return &ClientStream{
		stream:     stream,
		serializer: c.serializer,
	}, nil
}

// Close closes the client and terminates all its streams
func (c *RPCClient) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Client Stream
// --------------------------------------------------------------------------

// ClientStream executes commands over one logical stream. Requests and
// responses on a stream are strictly ordered: Execute writes one request
// frame and waits for exactly one response frame before the next request
// goes out.
type ClientStream struct {
	stream     transport.IStream
	serializer serializer.IRPCSerializer
	mu         sync.Mutex
}

// Execute sends one command and waits for its response
func (s *ClientStream) Execute(req *common.CommandRequest) (*common.CommandResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqBytes, err := s.serializer.SerializeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := s.stream.Send(reqBytes); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respBytes, err := s.stream.Recv()
	if err != nil {
		// After a failed receive the stream can no longer pair requests
		// with responses: a late reply to this request would be consumed
		// by the next Execute. Terminate the stream so reuse fails fast.
		_ = s.stream.Close()
		return nil, fmt.Errorf("failed to receive response: %w", err)
	}

	resp := &common.CommandResponse{}
	if err := s.serializer.DeserializeResponse(respBytes, resp); err != nil {
		return nil, fmt.Errorf("failed to deserialize response: %w", err)
	}

	return resp, nil
}

// Close closes the logical stream. Other streams of the same client are
// not affected.
func (s *ClientStream) Close() error {
	return s.stream.Close()
}
