// Package blocking implements the IPC contracts with one-thread-per-call
// semantics: every accept, read and write occupies the calling goroutine
// until the operation completes or fails. Concurrency across connections is
// the caller's job, typically one goroutine per accepted connection around
// Listener.AcceptOne, or a handler passed to Listener.Serve.
//
// Contexts are checked on entry only. Once a syscall has started it runs
// until completion, failure or the configured per-operation deadline
// (Config.TimeoutSecond); there is no mid-call cancellation. Callers needing
// cancellable operations should use the async package, which implements the
// same contracts.
package blocking
