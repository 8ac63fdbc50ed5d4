package common

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultEndpoint is the address the server listens on if nothing else is configured
	DefaultEndpoint = "0.0.0.0:4000"
	// DefaultMaxLineBytes limits the length of a single request line and of LIST payloads
	DefaultMaxLineBytes = 64 * 1024 * 1024 // 64 MB
)

// --------------------------------------------------------------------------
// Shared transport configuration
// --------------------------------------------------------------------------

// SocketConf holds the socket buffer sizes (0 = keep the OS default)
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific connection options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int // < 0 keeps the OS default
}

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the listener and connection settings of the server
type ServerTransportConfig struct {
	// Endpoint is the address to listen on (host:port for tcp, a path for unix)
	Endpoint string
	// MaxLineBytes is the largest accepted request line and the LIST payload limit
	MaxLineBytes int
	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters of the dMem server
type ServerConfig struct {
	// TimeoutSecond is the idle timeout of a session (0 = block forever)
	TimeoutSecond int64

	Transport ServerTransportConfig

	// Registry limits
	MaxAllocBytes uint64
	MaxTotalBytes uint64

	// MetricsEndpoint is the address of the prometheus endpoint (empty = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// DefaultServerConfig returns the server configuration used without flags or env variables
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Transport: ServerTransportConfig{
			Endpoint:     DefaultEndpoint,
			MaxLineBytes: DefaultMaxLineBytes,
			TCPConf: TCPConf{
				TCPNoDelay:   true,
				TCPLingerSec: -1,
			},
		},
		MaxAllocBytes: 1 << 30,
		MaxTotalBytes: 4 << 30,
		LogLevel:      "info",
	}
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	limit := func(v uint64) string {
		if v == 0 {
			return "unlimited"
		}
		return fmt.Sprintf("%d bytes", v)
	}

	// Transport settings
	addSection("Transport")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Max Line Size", fmt.Sprintf("%d bytes", c.Transport.MaxLineBytes))
	if c.TimeoutSecond > 0 {
		addField("Idle Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	} else {
		addField("Idle Timeout", "none")
	}
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))

	// Registry limits
	addSection("Registry")
	addField("Max Allocation", limit(c.MaxAllocBytes))
	addField("Max Total", limit(c.MaxTotalBytes))

	// Observability
	addSection("Observability")
	addField("Log Level", c.LogLevel)
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	} else {
		addField("Metrics Endpoint", "disabled")
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the connection settings of a client
type ClientTransportConfig struct {
	Endpoint   string
	RetryCount int
	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters of a dMem client
type ClientConfig struct {
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
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
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))

	return sb.String()
}
