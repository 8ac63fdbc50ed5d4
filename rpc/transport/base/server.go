package base

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dMem/rpc/common"
	"github.com/ValentinKolb/dMem/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
)

var Logger = logger.GetLogger("transport")

// acceptBackoff is the pause after a failed Accept, so a persistent error does not spin
const acceptBackoff = 50 * time.Millisecond

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector IServerConnector
	handler   transport.ServerHandleFunc
	sessions  atomic.Uint64 // Counter for session ids

	activeMu sync.Mutex
	active   net.Conn // Connection of the running session, closed on shutdown
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport
func NewBaseServerTransport(connector IServerConnector) transport.IRPCServerTransport {
	return &serverTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(ctx context.Context, config common.ServerConfig) error {
	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	return t.Serve(ctx, listener, config)
}

func (t *serverTransport) Serve(ctx context.Context, listener net.Listener, config common.ServerConfig) error {
	if t.handler == nil {
		_ = listener.Close()
		return fmt.Errorf("no handler registered")
	}

	// Close the listener and the running session on shutdown
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = listener.Close()
			t.closeActive()
		case <-stop:
			_ = listener.Close()
		}
	}()

	Logger.Infof("Starting %s server on %s (one connection at a time)", t.connector.GetName(), listener.Addr())

	// Accept connections
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				Logger.Infof("Server on %s stopped", listener.Addr())
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("listener closed: %w", err)
			}
			Logger.Errorf("Accept error: %v", err)
			time.Sleep(acceptBackoff)
			continue
		}

		// Handle the connection to completion before accepting the next one
		t.handleConnection(ctx, conn, config)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// setActive stores the connection of the running session.
// It returns false if the server is already shutting down.
func (t *serverTransport) setActive(ctx context.Context, conn net.Conn) bool {
	t.activeMu.Lock()
	defer t.activeMu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	t.active = conn
	return true
}

func (t *serverTransport) closeActive() {
	t.activeMu.Lock()
	defer t.activeMu.Unlock()
	if t.active != nil {
		_ = t.active.Close()
	}
}

// handleConnection runs the session of one connection until the client disconnects
func (t *serverTransport) handleConnection(ctx context.Context, conn net.Conn, config common.ServerConfig) {
	defer conn.Close()

	if !t.setActive(ctx, conn) {
		return
	}
	defer t.setActive(context.Background(), nil)

	sessionID := t.sessions.Add(1)
	remote := conn.RemoteAddr()
	Logger.Infof("Session %d: client %v connected", sessionID, remote)

	if err := t.connector.UpgradeConnection(conn, config); err != nil {
		Logger.Warningf("Session %d: failed to upgrade connection: %v", sessionID, err)
	}

	// Timeout in seconds
	timeout := time.Duration(config.TimeoutSecond) * time.Second

	reader := newLineReader(conn, config.Transport.MaxLineBytes)
	writer := bufio.NewWriter(conn)
	latency := gometrics.NewTimer()
	defer latency.Stop()

	// handleRequest reads one line, runs the handler and writes the response
	handleRequest := func() error {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return fmt.Errorf("failed to set read deadline: %w", err)
			}
		}

		line, err := reader.ReadLine()
		if err != nil {
			return err
		}

		start := time.Now()
		out := t.handler(line).String()
		latency.UpdateSince(start)
		Logger.Debugf("Session %d: handled %d byte request, %d byte response in %s", sessionID, len(line), len(out), time.Since(start))

		if timeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				return fmt.Errorf("failed to set write deadline: %w", err)
			}
		}

		if err := writeLine(writer, out); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		return nil
	}

	// Handle requests in a loop
	for {
		err := handleRequest()

		// Case EOF: Connection closed by client
		if errors.Is(err, io.EOF) {
			Logger.Infof("Session %d: connection closed by client", sessionID)
			break
		}

		// Case error: log and close connection
		if err != nil {
			if ctx.Err() != nil {
				Logger.Infof("Session %d: closed by server shutdown", sessionID)
			} else {
				Logger.Errorf("Session %d: error handling request: %v", sessionID, err)
			}
			break
		}
	}

	Logger.Infof("Session %d: handled %d commands (mean %s, max %s)",
		sessionID, latency.Count(), time.Duration(latency.Mean()), time.Duration(latency.Max()))
}
