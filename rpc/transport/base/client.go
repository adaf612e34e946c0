package base

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = common.GetLogger("transport")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection based on the provided configuration
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientConnection represents a single net connection together with the
// logical streams currently multiplexed over it
type clientConnection struct {
	conn     net.Conn
	endpoint string
	stopCh   chan struct{} // Close signal for the reader goroutine
	streams  *xsync.MapOf[uint64, *clientStream]
	connMu   sync.Mutex // Protects the connection itself
	dead     atomic.Bool
	parent   *clientTransport
}

// clientStream is the client-side endpoint of one logical stream
type clientStream struct {
	id        uint64
	conn      *clientConnection
	inbound   chan []byte
	done      chan struct{}
	err       error // Set before done is closed, nil means clean close
	closeOnce sync.Once
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex uint64 // Atomic counter for Round Robin
	nextStreamID  uint64 // Atomic counter for unique stream IDs
	stopping      atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Store the config
	t.config = config
	t.stopping.Store(false)

	// Close all existing connections
	t.closeConnections()

	// Set default value for ConnectionsPerEndpoint
	connectionsPerEP := 1
	if config.Transport.ConnectionsPerEndpoint > 0 {
		connectionsPerEP = config.Transport.ConnectionsPerEndpoint
	}

	// Create connections
	t.connections = make([]*clientConnection, 0, len(config.Transport.Endpoints)*connectionsPerEP)

	// Initialize client connections
	for _, endpoint := range config.Transport.Endpoints {
		// Create multiple connections per endpoint
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &clientConnection{
				conn:     nil, // Will be set by reconnect
				endpoint: endpoint,
				stopCh:   make(chan struct{}),
				streams:  xsync.NewMapOf[uint64, *clientStream](),
				parent:   t,
			}

			// Establish the initial connection using reconnect
			if err := clientConn.reconnect(); err != nil {
				Logger.Warn("failed to connect", "endpoint", endpoint, "connection", fmt.Sprintf("%d/%d", i+1, connectionsPerEP), "error", err)
				continue
			}

			// Add to our connections list
			t.connectionsMu.Lock()
			t.connections = append(t.connections, clientConn)
			t.connectionsMu.Unlock()

			// Start the frame demultiplexer
			go clientConn.readFrames()
		}
	}

	// Check if we have at least one connection
	if len(t.connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	Logger.Info("connected",
		"connections", len(t.connections),
		"endpoints", len(config.Transport.Endpoints),
		"transport", t.connector.GetName(),
	)

	return nil
}

func (t *clientTransport) OpenStream() (transport.IStream, error) {
	if t.stopping.Load() {
		return nil, fmt.Errorf("transport is closed")
	}

	conn := t.getNextConnection()
	if conn == nil {
		return nil, fmt.Errorf("no active connections available")
	}

	// Opening is implicit: the server creates its stream endpoint when the
	// first frame with this ID arrives
	stream := &clientStream{
		id:      atomic.AddUint64(&t.nextStreamID, 1),
		conn:    conn,
		inbound: make(chan []byte, streamBacklog),
		done:    make(chan struct{}),
	}
	conn.streams.Store(stream.id, stream)

	return stream, nil
}

func (t *clientTransport) Close() error {
	t.stopping.Store(true)
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next live connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	n := len(t.connections)
	if n == 0 {
		return nil
	}

	// Skip connections that failed and could not be restored
	for i := 0; i < n; i++ {
		index := atomic.AddUint64(&t.nextConnIndex, 1) % uint64(n)
		if conn := t.connections[index]; !conn.dead.Load() {
			return conn
		}
	}
	return nil
}

// closeConnections closes all active connections
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	for _, conn := range t.connections {
		// Signal reader goroutine to stop
		close(conn.stopCh)

		// Terminate all streams on this connection
		conn.failStreams(nil)

		// Close the connection
		conn.connMu.Lock()
		if conn.conn != nil {
			conn.conn.Close()
		}
		conn.connMu.Unlock()
	}

	// Empty the list
	t.connections = nil
}

// send writes one frame, serializing concurrent stream writers
func (c *clientConnection) send(streamID uint64, flags byte, data []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("connection to %s is closed", c.endpoint)
	}

	if c.parent.config.TimeoutSecond > 0 {
		timeout := time.Duration(c.parent.config.TimeoutSecond) * time.Second
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %v", err)
		}
	}

	return writeFrame(c.conn, streamID, flags, data)
}

// readFrames reads frames in a loop and distributes them to their streams.
// No read deadline is set here: idle pooled connections are expected, and
// per-message timeouts live in clientStream.Recv.
func (c *clientConnection) readFrames() {
	for {
		// Check if we should stop
		select {
		case <-c.stopCh:
			return
		default:
		}

		streamID, flags, data, err := c.readFrame()
		if err != nil {
			select {
			case <-c.stopCh:
				return
			default:
			}

			Logger.Error("connection error", "endpoint", c.endpoint, "error", err)

			// All streams on this connection are lost, but the connection
			// itself may be restorable for future streams
			c.failStreams(fmt.Errorf("connection to %s lost: %v", c.endpoint, err))

			if err := c.reconnect(); err != nil {
				Logger.Error("failed to reconnect", "endpoint", c.endpoint, "error", err)
				c.dead.Store(true)
				return
			}
			Logger.Info("reconnected", "endpoint", c.endpoint)
			continue
		}

		stream, found := c.streams.Load(streamID)
		if !found {
			Logger.Warn("received frame for unknown stream", "stream", streamID)
			continue
		}

		if flags&flagFIN != 0 {
			stream.shutdown(nil, false)
			continue
		}

		select {
		case stream.inbound <- data:
		case <-stream.done:
			// Stream closed while the frame was in flight, drop it
		default:
			Logger.Warn("stream backlog exceeded, closing stream", "stream", streamID)
			stream.shutdown(fmt.Errorf("stream %d backlog exceeded", streamID), true)
		}
	}
}

// readFrame reads a single frame from the current connection
func (c *clientConnection) readFrame() (uint64, byte, []byte, error) {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()

	if conn == nil {
		return 0, 0, nil, fmt.Errorf("connection to %s is closed", c.endpoint)
	}
	return readFrame(conn)
}

// failStreams terminates all streams on this connection with the given error
func (c *clientConnection) failStreams(reason error) {
	c.streams.Range(func(_ uint64, stream *clientStream) bool {
		stream.shutdown(reason, false)
		return true
	})
}

// reconnect establishes or restores a connection to the endpoint
func (c *clientConnection) reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Close the old connection if it exists
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	// Connect to the endpoint
	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", c.endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %v", c.endpoint, err)
	}

	// TLS wraps the tuned raw connection
	if c.parent.config.TLS.Enabled {
		tlsConf, err := common.BuildClientTLSConfig(c.parent.config.TLS)
		if err != nil {
			conn.Close()
			return fmt.Errorf("failed to build TLS config: %v", err)
		}
		if tlsConf.ServerName == "" {
			if host, _, splitErr := net.SplitHostPort(c.endpoint); splitErr == nil {
				tlsConf.ServerName = host
			}
		}
		conn = tls.Client(conn, tlsConf)
	}

	c.conn = conn
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IStream)
// --------------------------------------------------------------------------

func (s *clientStream) Recv() ([]byte, error) {
	// Drain messages queued before the stream was closed
	select {
	case msg := <-s.inbound:
		return msg, nil
	default:
	}

	var timeoutCh <-chan time.Time
	if s.conn.parent.config.TimeoutSecond > 0 {
		timeout := time.Duration(s.conn.parent.config.TimeoutSecond) * time.Second
		timeoutCh = time.After(timeout)
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
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	case <-timeoutCh:
		return nil, fmt.Errorf("receive timed out after %ds", s.conn.parent.config.TimeoutSecond)
	}
}

func (s *clientStream) Send(msg []byte) error {
	select {
	case <-s.done:
		if s.err != nil {
			return s.err
		}
		return fmt.Errorf("stream %d is closed", s.id)
	default:
	}
	return s.conn.send(s.id, 0, msg)
}

func (s *clientStream) Close() error {
	s.shutdown(nil, true)
	return nil
}

// shutdown closes the stream exactly once. If notifyPeer is set a FIN frame
// is sent so the server side terminates as well.
func (s *clientStream) shutdown(reason error, notifyPeer bool) {
	s.closeOnce.Do(func() {
		s.conn.streams.Delete(s.id)
		s.err = reason
		close(s.done)
		if notifyPeer {
			if err := s.conn.send(s.id, flagFIN, nil); err != nil {
				Logger.Debug("failed to send FIN", "stream", s.id, "error", err)
			}
		}
	})
}
