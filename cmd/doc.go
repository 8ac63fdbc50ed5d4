// Package cmd implements the command-line interface for the dMem buffer
// service. It provides a hierarchical command structure with operations
// for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - buf: Commands for buffer operations (alloc, write, read, free, list, perf)
//   - serve: Commands for starting and configuring the dMem server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dmem -help for a list of all commands.
package cmd
