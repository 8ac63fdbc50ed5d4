// Package unix implements a transport for dMem using Unix domain sockets, intended for
// local development and tests on a single machine. Clients speaking the TCP protocol
// can use it unchanged, only the endpoint differs (a socket path).
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates Unix socket listeners. An existing socket file at the
//     endpoint path is removed before listening.
package unix
