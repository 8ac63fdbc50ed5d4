package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Command Type Constants
// --------------------------------------------------------------------------

// Command is the first token of a request line. Commands are case-sensitive.
type Command string

const (
	CmdAlloc Command = "ALLOC" // Allocate a named buffer: ALLOC <name> <size>
	CmdWrite Command = "WRITE" // Write to a buffer: WRITE <name> <offset> <payload>
	CmdRead  Command = "READ"  // Read from a buffer: READ <name> <offset> <length>
	CmdFree  Command = "FREE"  // Release a buffer: FREE <name>
	CmdList  Command = "LIST"  // List all buffers: LIST
	CmdExit  Command = "EXIT"  // Say goodbye: EXIT (the connection stays open)
)

// arity holds the number of arguments each command requires
var arity = map[Command]int{
	CmdAlloc: 2,
	CmdWrite: 3,
	CmdRead:  3,
	CmdFree:  1,
	CmdList:  0,
	CmdExit:  0,
}

// Known reports whether c is a command of the protocol
func (c Command) Known() bool {
	_, ok := arity[c]
	return ok
}

// Arity returns the number of arguments c requires (0 for unknown commands)
func (c Command) Arity() int {
	return arity[c]
}

// Error tokens sent after "ERR " that are not registry return codes
const (
	ErrTokenEmpty          = "empty"
	ErrTokenUnknownCommand = "unknown_command"
	ErrTokenBadBase64      = "bad_base64"
	ErrTokenUsageSuffix    = "usage"
)

// ByeMessage is the payload of the response to EXIT
const ByeMessage = "bye"

// --------------------------------------------------------------------------
// Request
// --------------------------------------------------------------------------

// Request is a tokenized request line
type Request struct {
	Cmd  Command
	Args []string
}

// ParseRequest splits a request line at whitespace.
// The first token is the command, the remaining tokens are its arguments.
// An empty or blank line yields a request with an empty command.
func ParseRequest(line string) Request {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Request{}
	}
	return Request{
		Cmd:  Command(tokens[0]),
		Args: tokens[1:],
	}
}

// HasArgs reports whether the request carries at least the arguments its command requires.
// Additional arguments are ignored.
func (r Request) HasArgs() bool {
	return len(r.Args) >= r.Cmd.Arity()
}

// String serializes the request as a protocol line (without the newline)
func (r Request) String() string {
	if len(r.Args) == 0 {
		return string(r.Cmd)
	}
	return string(r.Cmd) + " " + strings.Join(r.Args, " ")
}

// --------------------------------------------------------------------------
// Request Factory Functions
// --------------------------------------------------------------------------

// NewAllocRequest creates a new ALLOC request
func NewAllocRequest(name string, size uint64) Request {
	return Request{Cmd: CmdAlloc, Args: []string{name, strconv.FormatUint(size, 10)}}
}

// NewWriteRequest creates a new WRITE request, payload must already be encoded
func NewWriteRequest(name string, offset uint64, payload string) Request {
	return Request{Cmd: CmdWrite, Args: []string{name, strconv.FormatUint(offset, 10), payload}}
}

// NewReadRequest creates a new READ request
func NewReadRequest(name string, offset, length uint64) Request {
	return Request{Cmd: CmdRead, Args: []string{name, strconv.FormatUint(offset, 10), strconv.FormatUint(length, 10)}}
}

// NewFreeRequest creates a new FREE request
func NewFreeRequest(name string) Request {
	return Request{Cmd: CmdFree, Args: []string{name}}
}

// NewListRequest creates a new LIST request
func NewListRequest() Request {
	return Request{Cmd: CmdList}
}

// NewExitRequest creates a new EXIT request
func NewExitRequest() Request {
	return Request{Cmd: CmdExit}
}

// --------------------------------------------------------------------------
// Response
// --------------------------------------------------------------------------

// Response is the structured form of a response line.
// It is serialized once, at the transport boundary.
type Response struct {
	Ok      bool   // Whether the command succeeded
	Payload string // Optional payload of a successful response
	Err     string // Error token of a failed response
}

// NewOKResponse creates a successful response with an optional payload
func NewOKResponse(payload string) *Response {
	return &Response{Ok: true, Payload: payload}
}

// NewErrorResponse creates a failed response
func NewErrorResponse(token string) *Response {
	return &Response{Err: token}
}

// NewUsageResponse creates the response for a known command with missing arguments
func NewUsageResponse(cmd Command) *Response {
	return NewErrorResponse(fmt.Sprintf("%s %s", cmd, ErrTokenUsageSuffix))
}

// String serializes the response as a protocol line (without the newline).
// An empty payload is omitted together with its separating space.
func (r *Response) String() string {
	if !r.Ok {
		return "ERR " + r.Err
	}
	if r.Payload == "" {
		return "OK"
	}
	return "OK " + r.Payload
}

// ParseResponse parses a response line (without the newline)
func ParseResponse(line string) (*Response, error) {
	switch {
	case line == "OK":
		return NewOKResponse(""), nil
	case strings.HasPrefix(line, "OK "):
		return NewOKResponse(line[len("OK "):]), nil
	case strings.HasPrefix(line, "ERR "):
		return NewErrorResponse(line[len("ERR "):]), nil
	default:
		return nil, fmt.Errorf("malformed response line: %q", line)
	}
}

// --------------------------------------------------------------------------
// Number Parsing
// --------------------------------------------------------------------------

// ParseNumber parses a decimal argument permissively, the way C's strtoull does:
// an optional sign followed by the longest run of digits. Text without leading digits
// yields 0, values that do not fit saturate at math.MaxUint64 and a leading '-'
// negates the result in two's complement.
func ParseNumber(s string) uint64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	negative := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	var n uint64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := uint64(s[i] - '0')
		if n > (math.MaxUint64-d)/10 {
			return math.MaxUint64
		}
		n = n*10 + d
	}

	if negative {
		return -n
	}
	return n
}
