// Package cmd implements the command-line interface for the unisock IPC
// library. It provides a small harness around the library's operations:
// running an echo server over a Unix domain socket, sending one-shot
// messages to it and benchmarking one-shot round trips.
//
// Configuration follows the flag-plus-environment pattern: every flag can
// also be set via an environment variable with the UNISOCK_ prefix (e.g.
// UNISOCK_BASE_DIR), optionally loaded from .env files.
package cmd
