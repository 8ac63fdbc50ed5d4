package registry

import "fmt"

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Operation executed successfully.
	RetCAlreadyExists                // 1: The name already has a live entry.
	RetCNotFound                     // 2: The name has no live entry.
	RetCOutOfBounds                  // 3: The range is not within the entry.
	RetCOutOfMemory                  // 4: The buffer could not be allocated.
)

// String returns the token used for the code on the wire
func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "ok"
	case RetCAlreadyExists:
		return "already_exists"
	case RetCNotFound:
		return "not_found"
	case RetCOutOfBounds:
		return "out_of_bounds"
	case RetCOutOfMemory:
		return "nomem"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a return code and an error message
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("RegistryError (code %s): %s", e.Code, e.Msg)
}

// Is reports whether target is a registry error with the same code.
// This allows errors.Is(err, ErrNotFound) for errors carrying a specific message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new Error with the given code and message
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

var (
	ErrAlreadyExists = NewError(RetCAlreadyExists, "entry already exists")
	ErrNotFound      = NewError(RetCNotFound, "entry not found")
	ErrOutOfBounds   = NewError(RetCOutOfBounds, "range out of bounds")
	ErrOutOfMemory   = NewError(RetCOutOfMemory, "allocation failed")
)
