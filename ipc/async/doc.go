// Package async implements the IPC contracts with cooperative semantics:
// every accept, read and write is a suspension point. A pending operation
// parks only its goroutine, and cancelling the context aborts the operation
// and reports ctx.Err() instead of occupying the call site until the socket
// becomes ready. Many connections can therefore be multiplexed over a small
// number of OS threads by the runtime scheduler.
//
// Cancellation is implemented by arming a context.AfterFunc that expires the
// socket deadline while the syscall is pending and disarming it when the
// operation wins the race. An operation aborted this way leaves the
// connection in an undefined position within the byte stream; the caller is
// expected to drop it, which matches the one-read-one-message protocol where
// writes are all-or-nothing from the caller's view.
//
// The listener tracks every connection it accepts, so closing the listener
// tears down outstanding connections and unblocks their suspended readers.
package async
