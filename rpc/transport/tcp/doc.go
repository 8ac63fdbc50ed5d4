// Package tcp implements the IPv4 TCP transport of dMem, the transport existing clients
// use (default endpoint 0.0.0.0:4000). It provides TCP specific implementations of the
// base package's connector interfaces; the listener loop, the session and the line
// client come from the base package.
//
// Key Components:
//
//   - clientConnector: TCP specific implementation of base.IClientConnector
//
//   - serverConnector: TCP specific implementation of base.IServerConnector. The listener
//     binds IPv4 only. The accept backlog is the operating system default, Go does not
//     expose it.
//
// Both connectors apply the socket options of TCPConf and SocketConf (no delay,
// keep-alive, linger, buffer sizes) to every connection.
package tcp
