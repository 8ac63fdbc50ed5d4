package server

import (
	"context"
	"net"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/dMem/lib/registry"
	"github.com/ValentinKolb/dMem/rpc/common"
	"github.com/ValentinKolb/dMem/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/sync/errgroup"
)

var Logger = logger.GetLogger("rpc")

// RPCServer wires the registry, the command dispatcher and a transport together
type RPCServer struct {
	config    common.ServerConfig
	transport transport.IRPCServerTransport
	registry  registry.IRegistry
	adapter   IRPCServerAdapter
	metrics   *serverMetrics
}

// NewRPCServer creates a new server with an empty registry.
// It takes a config and a transport as parameters.
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		tcp.NewTCPServerTransport(),
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewRPCServer(config common.ServerConfig, transport transport.IRPCServerTransport) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	reg := registry.NewRegistry(registry.Config{
		MaxAllocBytes: config.MaxAllocBytes,
		MaxTotalBytes: config.MaxTotalBytes,
	})

	// "OK " precedes the LIST payload on the line
	maxList := 0
	if config.Transport.MaxLineBytes > 0 {
		maxList = max(config.Transport.MaxLineBytes-len("OK "), 0)
	}

	s := &RPCServer{
		config:    config,
		transport: transport,
		registry:  reg,
		adapter:   NewRegistryServerAdapter(maxList),
		metrics:   newServerMetrics(reg),
	}
	transport.RegisterHandler(s.Handle)

	Logger.Infof("Created dMem server")
	Logger.Infof(config.String())
	return s
}

// Handle parses and executes one request line
func (s *RPCServer) Handle(line string) *common.Response {
	start := time.Now()
	req := common.ParseRequest(line)
	resp := s.adapter.Handle(req, s.registry)
	s.metrics.observe(req.Cmd, resp, start)
	return resp
}

// Registry returns the registry served by s
func (s *RPCServer) Registry() registry.IRegistry {
	return s.registry
}

// Serve creates the listener from the configuration and serves it until ctx is cancelled.
// A listener that cannot be created is returned as error.
func (s *RPCServer) Serve(ctx context.Context) error {
	return s.run(ctx, func(ctx context.Context) error {
		return s.transport.Listen(ctx, s.config)
	})
}

// ServeListener serves an existing listener until ctx is cancelled
func (s *RPCServer) ServeListener(ctx context.Context, listener net.Listener) error {
	return s.run(ctx, func(ctx context.Context) error {
		return s.transport.Serve(ctx, listener, s.config)
	})
}

// run starts the optional metrics endpoint next to the transport.
// The registry is torn down when both have stopped.
func (s *RPCServer) run(ctx context.Context, listen func(ctx context.Context) error) error {
	defer s.registry.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listen(ctx)
	})
	if s.config.MetricsEndpoint != "" {
		g.Go(func() error {
			return s.metrics.serveMetrics(ctx, s.config.MetricsEndpoint)
		})
	}
	return g.Wait()
}
