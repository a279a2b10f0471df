package ipc

import (
	"errors"
	"fmt"
	"os"
)

// ErrEndOfStream indicates a read on a connection whose peer has closed it.
// Peer disconnects are an expected, frequent condition rather than an anomaly,
// so callers are expected to test for this error and drop the connection.
var ErrEndOfStream = errors.New("connection closed by peer")

// Op identifies the socket operation that produced an OpError.
type Op uint8

const (
	OpBind Op = iota
	OpAccept
	OpConnect
	OpRead
	OpWrite
)

// String returns the lowercase name of the operation.
func (op Op) String() string {
	switch op {
	case OpBind:
		return "bind"
	case OpAccept:
		return "accept"
	case OpConnect:
		return "connect"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return "unknown"
	}
}

// OpError is the error type returned by all listener, connection and client
// operations. It carries the failed operation and the socket path involved so
// a caller can tell a bind failure from an accept failure without string
// matching.
type OpError struct {
	// Op is the operation that failed
	Op Op
	// Path is the socket path involved in the operation
	Path string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("ipc %s %q: %v", e.Op.String(), e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// IsEndOfStream reports whether err indicates the peer closed the connection.
func IsEndOfStream(err error) bool {
	return errors.Is(err, ErrEndOfStream)
}

// IsTimeout reports whether err indicates an operation exceeded a configured
// read or write deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, os.ErrDeadlineExceeded)
}
