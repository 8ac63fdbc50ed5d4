// Package common provides the data structures shared by the dMem server, its transport
// layer and its client. It defines the line protocol, the configuration structures and
// the logging setup.
//
// The package focuses on:
//   - Protocol definition: commands, argument arity, request and response lines
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with Dragonboat's logger facade
//
// Key Components:
//
//   - Request: A tokenized request line. ParseRequest splits a line at whitespace,
//     the Request factory functions build lines for the client.
//
//   - Response: The structured form of a response line ("OK", "OK <payload>" or
//     "ERR <token>"). Handlers build a Response, the transport serializes it once.
//
//   - ParseNumber: Permissive decimal parsing that mirrors C's strtoull, kept for
//     wire compatibility with existing clients.
//
//   - ServerConfig / ClientConfig: Configuration of the server (listener, registry
//     limits, metrics endpoint, log level) and of clients.
//
//   - Logger: Custom logging implementation (CreateLogger, InitLoggers) that plugs into
//     Dragonboat's logger package so every component logs in the same format.
package common
