package base_test

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/ValentinKolb/tKV/rpc/transport/tcp"
	"github.com/ValentinKolb/tKV/rpc/transport/unix"
)

// startEchoServer starts a server transport whose handler echoes every
// message back on its stream until the stream closes
func startEchoServer(t *testing.T, server transport.IRPCServerTransport, endpoint string) {
	t.Helper()

	server.RegisterHandler(func(stream transport.IStream) {
		for {
			msg, err := stream.Recv()
			if err != nil {
				return
			}
			if err := stream.Send(msg); err != nil {
				return
			}
		}
	})

	go func() {
		_ = server.Listen(common.ServerConfig{
			TimeoutSecond: 10,
			Transport:     common.ServerTransportConfig{Endpoint: endpoint},
		})
	}()

	// Give the listener a moment to bind
	time.Sleep(100 * time.Millisecond)
}

func connect(t *testing.T, client transport.IRPCClientTransport, endpoint string, connections int) {
	t.Helper()

	err := client.Connect(common.ClientConfig{
		TimeoutSecond: 10,
		Transport: common.ClientTransportConfig{
			Endpoints:              []string{endpoint},
			ConnectionsPerEndpoint: connections,
		},
	})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
}

func TestTCPStreamEcho(t *testing.T) {
	endpoint := "127.0.0.1:10186"
	startEchoServer(t, tcp.NewTCPServerTransport(), endpoint)

	client := tcp.NewTCPClientTransport()
	connect(t, client, endpoint, 1)
	defer client.Close()

	stream, err := client.OpenStream()
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer stream.Close()

	for i := 0; i < 5; i++ {
		msg := []byte(fmt.Sprintf("ping %d", i))
		if err := stream.Send(msg); err != nil {
			t.Fatalf("send failed: %v", err)
		}
		resp, err := stream.Recv()
		if err != nil {
			t.Fatalf("recv failed: %v", err)
		}
		if string(resp) != string(msg) {
			t.Errorf("expected %q, got %q", msg, resp)
		}
	}
}

func TestConcurrentStreamsAreIndependent(t *testing.T) {
	endpoint := "127.0.0.1:10187"
	startEchoServer(t, tcp.NewTCPServerTransport(), endpoint)

	client := tcp.NewTCPClientTransport()
	connect(t, client, endpoint, 2)
	defer client.Close()

	const (
		numStreams  = 8
		numMessages = 20
	)

	var wg sync.WaitGroup
	errsCh := make(chan error, numStreams)

	for s := 0; s < numStreams; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()

			stream, err := client.OpenStream()
			if err != nil {
				errsCh <- fmt.Errorf("stream %d: open failed: %v", s, err)
				return
			}
			defer stream.Close()

			// Each stream must see its own messages, in order, regardless
			// of what the other streams do on the shared connections
			for i := 0; i < numMessages; i++ {
				msg := fmt.Sprintf("stream %d message %d", s, i)
				if err := stream.Send([]byte(msg)); err != nil {
					errsCh <- fmt.Errorf("stream %d: send failed: %v", s, err)
					return
				}
				resp, err := stream.Recv()
				if err != nil {
					errsCh <- fmt.Errorf("stream %d: recv failed: %v", s, err)
					return
				}
				if string(resp) != msg {
					errsCh <- fmt.Errorf("stream %d: expected %q, got %q", s, msg, resp)
					return
				}
			}
		}(s)
	}

	wg.Wait()
	close(errsCh)
	for err := range errsCh {
		t.Error(err)
	}
}

func TestServerCloseTerminatesStream(t *testing.T) {
	endpoint := "127.0.0.1:10188"

	// Handler that answers exactly one message and then returns, which
	// makes the transport close the stream and notify the client
	server := tcp.NewTCPServerTransport()
	server.RegisterHandler(func(stream transport.IStream) {
		msg, err := stream.Recv()
		if err != nil {
			return
		}
		_ = stream.Send(msg)
	})
	go func() {
		_ = server.Listen(common.ServerConfig{
			TimeoutSecond: 10,
			Transport:     common.ServerTransportConfig{Endpoint: endpoint},
		})
	}()
	time.Sleep(100 * time.Millisecond)

	client := tcp.NewTCPClientTransport()
	connect(t, client, endpoint, 1)
	defer client.Close()

	stream, err := client.OpenStream()
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}

	if err := stream.Send([]byte("one shot")); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := stream.Recv(); err != nil {
		t.Fatalf("recv failed: %v", err)
	}

	// The server side is done with the stream, the next receive must
	// report end of stream instead of blocking
	if _, err := stream.Recv(); err != io.EOF {
		t.Fatalf("expected io.EOF after server close, got %v", err)
	}
}

func TestUnixStreamEcho(t *testing.T) {
	endpoint := filepath.Join(t.TempDir(), "echo.sock")
	startEchoServer(t, unix.NewUnixServerTransport(), endpoint)

	client := unix.NewUnixClientTransport()
	connect(t, client, endpoint, 1)
	defer client.Close()

	stream, err := client.OpenStream()
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer stream.Close()

	if err := stream.Send([]byte("over the socket")); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	resp, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv failed: %v", err)
	}
	if string(resp) != "over the socket" {
		t.Errorf("expected %q, got %q", "over the socket", resp)
	}
}
