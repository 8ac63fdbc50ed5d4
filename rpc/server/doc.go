// Package server implements the dMem server: the command dispatcher that executes
// protocol lines against the allocation registry, and the wiring of registry,
// dispatcher, transport and metrics.
//
// The package focuses on:
//   - Dispatching the buffer commands (ALLOC, WRITE, READ, FREE, LIST, EXIT)
//   - Mapping registry and codec failures to the protocol's error tokens
//   - Exposing per-command metrics in prometheus format
//
// Key Components:
//
//   - IRPCServerAdapter: Interface of command dispatchers, with the Handle method that
//     executes one parsed request against a registry.IRegistry.
//
//   - NewRegistryServerAdapter: The dispatcher for the buffer commands. WRITE checks the
//     name first, then the payload, then the range. LIST payloads are capped, entries
//     that do not fit are left out as a whole and a warning is logged.
//
//   - RPCServer: Owns the registry for its whole lifetime. Serve blocks until the
//     context is cancelled and tears the registry down afterwards.
//
// Usage Example:
//
//	config := common.DefaultServerConfig()
//	config.MetricsEndpoint = "127.0.0.1:9100"
//
//	s := server.NewRPCServer(config, tcp.NewTCPServerTransport())
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := s.Serve(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Metrics:
//
//	dmem_commands_total{command,result}       handled requests by command and result
//	dmem_command_duration_seconds{command}    handler latency
//	dmem_registry_entries                     live entries
//	dmem_registry_bytes                       live buffer bytes
//	dmem_registry_median_allocation_bytes     median allocation size estimate
package server
