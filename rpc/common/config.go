package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Shared socket configuration
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings shared by all stream transports.
type SocketConf struct {
	WriteBufferSize int // socket write buffer in bytes, 0 = OS default
	ReadBufferSize  int // socket read buffer in bytes, 0 = OS default
}

// TCPConf holds TCP-specific connection settings.
type TCPConf struct {
	TCPNoDelay      bool // disable Nagle's algorithm
	TCPKeepAliveSec int  // keep-alive period in seconds, 0 = disabled
	TCPLingerSec    int  // linger timeout in seconds, negative = OS default
}

// TLSConf selects optional transport encryption for the physical
// connection. Certificate provisioning is external; this only carries
// file paths.
type TLSConf struct {
	// Enabled wraps the physical connection in TLS before multiplexing
	// begins.
	Enabled bool
	// CertFile/KeyFile are the endpoint's own certificate and key.
	// Required on the server; optional on the client (set both for
	// mutual authentication).
	CertFile string
	KeyFile  string
	// CAFile is the certificate pool used to verify the peer. Required
	// on the server for mutual authentication; on the client it
	// overrides the system pool.
	CAFile string
	// ServerName overrides the hostname verified by the client.
	ServerName string
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the transport settings of the server.
type ServerTransportConfig struct {
	// Endpoint is the address the transport listens on (host:port for
	// tcp, a socket path for unix).
	Endpoint string
	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters of a tKV server.
type ServerConfig struct {
	// Engine selects the storage backend ("memory" or "badger").
	Engine string
	// DataDir is the directory of the durable engine (badger only).
	DataDir string
	// SyncWrites forces flush-to-disk on every write (badger only).
	SyncWrites bool

	// TimeoutSecond is the per-frame read/write deadline on the wire.
	TimeoutSecond int64

	// MetricsEndpoint is an optional HTTP address exposing Prometheus
	// metrics. Empty disables the endpoint.
	MetricsEndpoint string

	// LogLevel is the level at which logs are emitted.
	LogLevel string

	Transport ServerTransportConfig
	TLS       TLSConf
}

// String returns a formatted string representation of the configuration.
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("TLS", strconv.FormatBool(c.TLS.Enabled))

	addSection("Storage")
	addField("Engine", c.Engine)
	if c.Engine == "badger" {
		addField("Data Directory", c.DataDir)
		addField("Sync Writes", strconv.FormatBool(c.SyncWrites))
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	if c.MetricsEndpoint != "" {
		addSection("Metrics")
		addField("Endpoint", c.MetricsEndpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the transport settings of the client.
type ClientTransportConfig struct {
	// Endpoints lists the server addresses to connect to.
	Endpoints []string
	// ConnectionsPerEndpoint opens multiple physical connections per
	// endpoint; logical streams are placed round-robin across them.
	ConnectionsPerEndpoint int
	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters of a tKV client.
type ClientConfig struct {
	// TimeoutSecond bounds how long one Execute waits for its response.
	TimeoutSecond int

	Transport ClientTransportConfig
	TLS       TLSConf
}

// String returns a formatted string representation of the client
// configuration.
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Connections Per Endpoint", strconv.Itoa(max(1, c.Transport.ConnectionsPerEndpoint)))
	addField("TLS", strconv.FormatBool(c.TLS.Enabled))

	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
