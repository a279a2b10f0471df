// Package ipc defines the contracts for local inter-process communication over
// Unix domain sockets. It is the shared foundation for the two concrete
// implementations of the library and for the one-shot client.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structure and the logging setup shared by all
//     implementations.
//
//   - blocking: Listener and Conn implementation in which every accept, read
//     and write occupies the calling goroutine until it completes or fails.
//
//   - async: Listener and Conn implementation with the same contracts, but
//     every operation is a suspension point that honors context cancellation
//     while it is pending.
//
//   - client: One-shot request/response exchanges (connect, send, optionally
//     receive, close) with no state retained between calls.
//
// Key Components:
//
//   - Listener: Owns one bound server socket and hands out accepted
//     connections, either one at a time (AcceptOne) or in an infinite loop
//     with a per-connection handler (Serve).
//
//   - Conn: Owns one connected socket descriptor, whether accepted by a
//     Listener or dialed by a client. Both provenances expose the same
//     capability set: raw reads, text reads and all-or-nothing writes.
//
//   - PathResolver: Turns user supplied socket names into absolute filesystem
//     paths so that listeners and clients agree on the same location for a
//     given name.
//
//   - OpError / ErrEndOfStream: The error taxonomy. Every failure carries the
//     operation that produced it and the socket path involved; a peer closing
//     the connection is distinguished from anomalous read failures.
//
// Wire format: there is none. One read syscall's worth of bytes is one
// message, capped at the internal buffer size for text reads or at the
// caller's buffer for raw reads. Callers needing framing layer it on top.
package ipc
