// Package common provides the configuration structure and logging setup
// shared by every part of the IPC library. It defines no socket behavior of
// its own.
//
// Key Components:
//
//   - Config: All knobs for listeners, connections and clients: the socket
//     base directory, the internal read buffer size, the per-operation
//     timeout for blocking connections and the log level. The base directory
//     is threaded into path resolution explicitly instead of living in a
//     process-wide constant, so independent instances in one process can use
//     different directories.
//
//   - Logger: Custom logging implementation that integrates with Dragonboat's
//     logging facade while providing consistent formatting across the
//     application.
package common
