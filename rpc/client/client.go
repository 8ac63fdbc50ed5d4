package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dMem/lib/codec"
	"github.com/ValentinKolb/dMem/lib/registry"
	"github.com/ValentinKolb/dMem/rpc/common"
	"github.com/ValentinKolb/dMem/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("client")

// ErrProtocol is returned for responses that do not match the request
var ErrProtocol = errors.New("unexpected response")

// ServerError is an ERR response without a registry equivalent (usage, bad_base64, ...)
type ServerError struct {
	Token string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s", e.Token)
}

// BufferClient is a client for the buffer commands
type BufferClient struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport
}

// NewBufferClient connects the transport and returns a client
func NewBufferClient(config common.ClientConfig, transport transport.IRPCClientTransport) (*BufferClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}
	return &BufferClient{
		config:    config,
		transport: transport,
	}, nil
}

// --------------------------------------------------------------------------
// Commands
// --------------------------------------------------------------------------

// Alloc allocates a buffer of size bytes under name
func (c *BufferClient) Alloc(name string, size uint64) error {
	_, err := c.invoke(common.NewAllocRequest(name, size))
	return err
}

// Write writes data into the buffer name at offset
func (c *BufferClient) Write(name string, offset uint64, data []byte) error {
	if len(data) == 0 {
		// an empty payload cannot be expressed as a token, only check the name and offset
		_, err := c.Read(name, offset, 0)
		return err
	}
	_, err := c.invoke(common.NewWriteRequest(name, offset, codec.Encode(data)))
	return err
}

// Read reads length bytes from the buffer name starting at offset
func (c *BufferClient) Read(name string, offset, length uint64) ([]byte, error) {
	payload, err := c.invoke(common.NewReadRequest(name, offset, length))
	if err != nil {
		return nil, err
	}

	data, err := codec.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: READ payload: %v", ErrProtocol, err)
	}
	return data, nil
}

// Free releases the buffer name
func (c *BufferClient) Free(name string) error {
	_, err := c.invoke(common.NewFreeRequest(name))
	return err
}

// List returns all buffers in the order reported by the server (newest first)
func (c *BufferClient) List() ([]registry.EntryInfo, error) {
	payload, err := c.invoke(common.NewListRequest())
	if err != nil {
		return nil, err
	}
	return parseList(payload)
}

// Exit sends EXIT. The server keeps the connection open, call Close to disconnect.
func (c *BufferClient) Exit() error {
	payload, err := c.invoke(common.NewExitRequest())
	if err != nil {
		return err
	}
	if payload != common.ByeMessage {
		return fmt.Errorf("%w: EXIT answered with %q", ErrProtocol, payload)
	}
	return nil
}

// Close closes the connection to the server
func (c *BufferClient) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// invoke sends a request and returns the payload of a successful response.
// Error responses are converted to errors.
func (c *BufferClient) invoke(req common.Request) (string, error) {
	line, err := c.transport.Send(req.String())
	if err != nil {
		return "", err
	}

	resp, err := common.ParseResponse(line)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	if !resp.Ok {
		Logger.Debugf("%s failed: %s", req.Cmd, resp.Err)
		return "", responseError(resp.Err)
	}
	return resp.Payload, nil
}

// responseError maps an error token to the matching registry error if there is one
func responseError(token string) error {
	for _, err := range []*registry.Error{
		registry.ErrAlreadyExists,
		registry.ErrNotFound,
		registry.ErrOutOfBounds,
		registry.ErrOutOfMemory,
	} {
		if err.Code.String() == token {
			return err
		}
	}
	return &ServerError{Token: token}
}

// parseList parses a LIST payload ("name:size;name:size")
func parseList(payload string) ([]registry.EntryInfo, error) {
	if payload == "" {
		return []registry.EntryInfo{}, nil
	}

	items := strings.Split(payload, ";")
	entries := make([]registry.EntryInfo, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue // tolerate a trailing separator
		}
		sep := strings.LastIndexByte(item, ':')
		if sep < 0 {
			return nil, fmt.Errorf("%w: LIST item %q", ErrProtocol, item)
		}
		size, err := strconv.ParseUint(item[sep+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: LIST item %q: %v", ErrProtocol, item, err)
		}
		entries = append(entries, registry.EntryInfo{Name: item[:sep], Size: size})
	}
	return entries, nil
}
