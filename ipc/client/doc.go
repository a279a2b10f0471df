// Package client provides one-shot request/response exchanges over Unix
// domain sockets: connect, write the payload, optionally wait for a single
// response, close. No state is retained between calls, which makes the
// one-shot path suitable for infrequent messages; a caller sending many
// messages in a short period should hold a persistent connection from
// blocking.Dial or async.Dial instead.
package client
