// Package base provides the protocol-agnostic core of the dMem transports: the listener
// loop, the connection session and the line client. Protocol specific parts (creating
// listeners, dialing, socket options) are injected through connectors, see the tcp and
// unix packages.
//
// Key Components:
//
//   - IServerConnector/IClientConnector: Interfaces for protocol-specific operations.
//
//   - serverTransport: Accepts one connection at a time and runs its session to
//     completion before accepting the next. A second client waits in the listen
//     backlog until the first one disconnects.
//
//   - session loop: Reads newline-terminated lines, hands each one to the registered
//     handler and writes the response line back before reading again. The session ends
//     when the client closes the connection or a read fails. The server never closes a
//     connection because of a command (EXIT included).
//
//   - lineReader: Dynamically growing line reader with an explicit size cap
//     (ServerTransportConfig.MaxLineBytes). A longer line ends the session.
//
//   - clientTransport: Single connection client with reconnects and retries for
//     establishing the connection. A request is never resent, because commands like
//     ALLOC are not idempotent.
//
// Timeouts:
//
//	By default all reads and writes block without a deadline, so an idle client stalls
//	the server. ServerConfig.TimeoutSecond sets an idle deadline per read and write.
//
// Statistics:
//
//	Every session keeps a go-metrics timer of the handler latency which is summarized
//	in the log line written when the session ends.
package base
