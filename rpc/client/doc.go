// Package client implements a Go client for the dMem line protocol. It sends the
// buffer commands over an IRPCClientTransport and converts error responses back into
// the registry's error values, so callers can use errors.Is(err, registry.ErrNotFound).
//
// Usage:
//
//	c, err := client.NewBufferClient(config, tcp.NewTCPClientTransport())
//	if err != nil { ... }
//	defer c.Close()
//
//	_ = c.Alloc("foo", 10)
//	_ = c.Write("foo", 0, []byte("hello"))
//	data, err := c.Read("foo", 0, 5)
//
// The client serializes requests, one command is in flight at a time.
package client
