// Package rpc provides the network layer of the dMem buffer service. It
// connects clients to the allocation registry over a line-oriented text
// protocol.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Request/Response protocol types, configuration structures,
//     and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets). The base subpackage holds the serial accept loop and the
//     session handling shared by all of them.
//
//   - client: A Go client for the buffer commands (ALLOC, WRITE, READ, FREE, LIST, EXIT).
//
//   - server: The command dispatcher, metrics and the server wiring that connects
//     a registry to a transport.
package rpc
