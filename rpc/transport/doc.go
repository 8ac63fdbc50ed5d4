// Package transport defines the interfaces of the dMem transport layer. A transport
// moves newline-terminated protocol lines between clients and the command handler and
// is independent of the command semantics.
//
// Key Components:
//
//   - IRPCServerTransport: Server-side transport that accepts connections and feeds
//     every request line to the registered ServerHandleFunc.
//
//   - IRPCClientTransport: Client-side transport that sends one request line and waits
//     for the matching response line.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// Implementations live in the base (protocol agnostic core), tcp and unix packages.
package transport
