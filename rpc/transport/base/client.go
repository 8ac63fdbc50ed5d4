package base

import (
	"bufio"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/dMem/rpc/common"
	"github.com/ValentinKolb/dMem/rpc/transport"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig

	mu     sync.Mutex // Serializes request/response pairs
	conn   net.Conn
	reader *lineReader
	writer *bufio.Writer
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
	if config.Transport.Endpoint == "" {
		return fmt.Errorf("no endpoint provided")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.config = config
	t.closeConnection()

	if err := t.reconnect(); err != nil {
		return err
	}

	Logger.Infof("Connected to %s using %s transport", config.Transport.Endpoint, t.connector.GetName())
	return nil
}

func (t *clientTransport) Send(line string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Restore a connection that was dropped by an earlier failure
	if t.conn == nil {
		if err := t.reconnect(); err != nil {
			return "", err
		}
	}

	if t.config.TimeoutSecond > 0 {
		deadline := time.Now().Add(time.Duration(t.config.TimeoutSecond) * time.Second)
		if err := t.conn.SetDeadline(deadline); err != nil {
			return "", fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	if err := writeLine(t.writer, line); err != nil {
		t.closeConnection()
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	resp, err := t.reader.ReadLine()
	if err != nil {
		t.closeConnection()
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return resp, nil
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeConnection()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// closeConnection closes the active connection, if any
func (t *clientTransport) closeConnection() {
	if t.conn != nil {
		_ = t.conn.Close()
	}
	t.conn, t.reader, t.writer = nil, nil, nil
}

// reconnect establishes a connection to the endpoint.
// Establishing the connection is retried with exponential backoff, requests never are.
func (t *clientTransport) reconnect() error {
	maxRetries := t.config.Transport.RetryCount
	if maxRetries < 1 {
		maxRetries = 1
	}

	// Initial backoff duration in milliseconds
	backoffMs := 50

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := t.connector.Connect(t.config.Transport.Endpoint)
		if err == nil {
			if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
				_ = conn.Close()
				return fmt.Errorf("failed to upgrade connection to %s: %w", t.config.Transport.Endpoint, err)
			}
			t.conn = conn
			t.reader = newLineReader(conn, 0)
			t.writer = bufio.NewWriter(conn)
			return nil
		}

		lastErr = err
		Logger.Debugf("Connection attempt %d/%d failed: %v", i+1, maxRetries, err)

		if i < maxRetries-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	return fmt.Errorf("failed to connect to %s after %d attempts: %w", t.config.Transport.Endpoint, maxRetries, lastErr)
}
