package transport

import (
	"context"
	"net"

	"github.com/ValentinKolb/dMem/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles one request line.
// It is called by a server transport for every line read from a connection (without
// the trailing newline) and returns the response, which the transport serializes
// and writes back before the next line is read.
type ServerHandleFunc func(line string) (resp *common.Response)

// IRPCServerTransport is the interface for the server side of the line protocol
type IRPCServerTransport interface {
	// RegisterHandler registers the handler for request lines.
	// It must be called before Listen or Serve.
	RegisterHandler(handler ServerHandleFunc)
	// Listen creates a listener from the configuration and serves it until ctx is cancelled.
	// Errors creating the listener are returned immediately.
	Listen(ctx context.Context, config common.ServerConfig) error
	// Serve accepts connections on an existing listener until ctx is cancelled.
	// Connections are served one after another, never concurrently.
	Serve(ctx context.Context, listener net.Listener, config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the client side of the line protocol
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send writes one request line and returns the response line (both without newline)
	Send(line string) (resp string, err error)
	// Close closes the transport connection
	Close() error
}
