package ipc

import (
	"context"
)

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

// Conn is a single connected Unix domain socket. A Conn is exclusively owned
// by whichever goroutine currently holds it; the implementations perform no
// internal locking.
//
// The blocking implementation checks ctx only on entry: once a syscall has
// started it runs until completion, failure or the configured deadline. The
// async implementation additionally aborts a pending operation when ctx is
// cancelled.
type Conn interface {
	// ReadRaw performs exactly one read into buf and returns the number of
	// bytes read. A zero-byte read means the peer closed the connection and
	// is reported as an ErrEndOfStream failure, never as a valid empty
	// message.
	ReadRaw(ctx context.Context, buf []byte) (int, error)

	// ReadText reads one message into an internal buffer (Config.BufferSize
	// bytes) and decodes it as UTF-8. Invalid sequences are replaced, never
	// fatal. Same end-of-stream semantics as ReadRaw.
	ReadText(ctx context.Context) (string, error)

	// Send writes the entire payload or fails. Partial writes are not exposed
	// to the caller; on error the connection should be dropped and, if
	// appropriate, re-dialed.
	Send(ctx context.Context, payload []byte) error

	// Close releases the socket descriptor.
	Close() error
}

// --------------------------------------------------------------------------
// Listener
// --------------------------------------------------------------------------

// HandlerFunc handles one accepted connection inside Listener.Serve. The
// connection is owned by the handler for the duration of the call and is
// closed by the serve loop when the handler returns. A non-nil error ends the
// loop; restart policy is the caller's responsibility.
type HandlerFunc func(conn Conn) error

// Listener owns one bound Unix domain server socket. A Listener must not be
// shared: exactly one value owns a given bound descriptor.
type Listener interface {
	// AcceptOne waits until a peer connects and returns the accepted
	// connection, transferring ownership to the caller. After a failed
	// accept the listener remains usable and the call may be retried.
	AcceptOne(ctx context.Context) (Conn, error)

	// Serve accepts connections forever, invoking handler synchronously with
	// each accepted connection and closing it when the handler returns. A
	// handler or accept error ends the loop and is returned; the listener
	// itself stays usable so the caller may call Serve again.
	Serve(ctx context.Context, handler HandlerFunc) error

	// Path returns the resolved filesystem path the listener is bound to.
	Path() string

	// Close releases the bound descriptor and removes the socket file.
	Close() error
}
