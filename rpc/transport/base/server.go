package base

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// streamBacklog is the number of inbound messages a single logical stream
// may queue before the session considers it stuck and closes it. A stalled
// handler must never be able to block the shared read loop.
const streamBacklog = 64

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector IServerConnector
	handler   transport.StreamHandleFunc
	config    common.ServerConfig
	listener  net.Listener
	tlsConf   *tls.Config
}

// serverSession multiplexes the logical streams of one accepted connection.
// A single read loop demultiplexes frames onto per-stream queues, every
// stream is served by its own handler goroutine, and all writes back to the
// connection are serialized through writeMu.
type serverSession struct {
	conn    net.Conn
	t       *serverTransport
	streams *xsync.MapOf[uint64, *serverStream]
	writeMu sync.Mutex
	timeout time.Duration
	wg      sync.WaitGroup
}

// serverStream is the server-side endpoint of one logical stream
type serverStream struct {
	id        uint64
	session   *serverSession
	inbound   chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with the specified connector
func NewBaseServerTransport(connector IServerConnector) transport.IRPCServerTransport {
	return &serverTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.StreamHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no stream handler registered")
	}
	t.config = config

	// Build the TLS config up front if TLS is enabled
	if config.TLS.Enabled {
		tlsConf, err := common.BuildServerTLSConfig(config.TLS)
		if err != nil {
			return fmt.Errorf("failed to build TLS config: %v", err)
		}
		t.tlsConf = tlsConf
	}

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %v", err)
	}
	t.listener = listener

	Logger.Info("server listening",
		"transport", t.connector.GetName(),
		"endpoint", config.Transport.Endpoint,
		"tls", config.TLS.Enabled,
	)

	// Accept connections
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			Logger.Error("accept error", "error", err)
			continue
		}

		// Handle the connection in a goroutine
		go t.handleConnection(conn)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection upgrades a freshly accepted connection and runs its session
func (t *serverTransport) handleConnection(conn net.Conn) {
	// Socket tuning happens on the raw connection, before any TLS wrapping
	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		Logger.Error("failed to upgrade connection", "error", err)
		conn.Close()
		return
	}

	if t.tlsConf != nil {
		conn = tls.Server(conn, t.tlsConf)
	}

	session := &serverSession{
		conn:    conn,
		t:       t,
		streams: xsync.NewMapOf[uint64, *serverStream](),
		timeout: time.Duration(t.config.TimeoutSecond) * time.Second,
	}
	session.serve()
}

// serve runs the read loop of one connection until the connection dies.
// Frames are routed to their logical stream; the first frame of an unknown
// stream ID implicitly opens the stream and spawns its handler.
func (s *serverSession) serve() {
	defer s.conn.Close()

	for {
		if s.timeout > 0 {
			if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
				Logger.Error("failed to set read deadline", "error", err)
				break
			}
		}

		streamID, flags, data, err := readFrame(s.conn)
		if err == io.EOF {
			Logger.Info("connection closed by client")
			break
		}
		if err != nil {
			Logger.Error("error reading frame", "error", err)
			break
		}

		// FIN closes the stream without touching the rest of the session
		if flags&flagFIN != 0 {
			if stream, ok := s.streams.Load(streamID); ok {
				stream.shutdown(false)
			}
			continue
		}

		stream, loaded := s.streams.LoadOrCompute(streamID, func() *serverStream {
			return &serverStream{
				id:      streamID,
				session: s,
				inbound: make(chan []byte, streamBacklog),
				done:    make(chan struct{}),
			}
		})

		// New stream: hand it to its own handler goroutine
		if !loaded {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer stream.Close()
				s.t.handler(stream)
			}()
		}

		select {
		case stream.inbound <- data:
		case <-stream.done:
			// Stream closed while the frame was in flight, drop it
		default:
			Logger.Warn("stream backlog exceeded, closing stream", "stream", streamID)
			stream.Close()
		}
	}

	// Connection is gone: terminate all streams and wait for their handlers
	s.streams.Range(func(_ uint64, stream *serverStream) bool {
		stream.shutdown(false)
		return true
	})
	s.wg.Wait()
}

// send writes one frame, serializing concurrent stream writers
func (s *serverSession) send(streamID uint64, flags byte, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.timeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %v", err)
		}
	}
	return writeFrame(s.conn, streamID, flags, data)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IStream)
// --------------------------------------------------------------------------

func (s *serverStream) Recv() ([]byte, error) {
	// Drain messages queued before the stream was closed
	select {
	case msg := <-s.inbound:
		return msg, nil
	default:
	}

	select {
	case msg := <-s.inbound:
		return msg, nil
	case <-s.done:
		// When a message and the close raced into this select, deliver
		// the message first; the close is observed on the next call
		select {
		case msg := <-s.inbound:
			return msg, nil
		default:
		}
		return nil, io.EOF
	}
}

func (s *serverStream) Send(msg []byte) error {
	select {
	case <-s.done:
		return fmt.Errorf("stream %d is closed", s.id)
	default:
	}
	return s.session.send(s.id, 0, msg)
}

func (s *serverStream) Close() error {
	s.shutdown(true)
	return nil
}

// shutdown closes the stream exactly once. If notifyPeer is set a FIN frame
// is sent so the client side terminates as well.
func (s *serverStream) shutdown(notifyPeer bool) {
	s.closeOnce.Do(func() {
		s.session.streams.Delete(s.id)
		close(s.done)
		if notifyPeer {
			if err := s.session.send(s.id, flagFIN, nil); err != nil {
				Logger.Debug("failed to send FIN", "stream", s.id, "error", err)
			}
		}
	})
}
