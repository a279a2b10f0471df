package ipc

import (
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("ipc")

// probeTimeout bounds the liveness probe so a wedged listener cannot stall a
// bind indefinitely.
const probeTimeout = time.Second

// ClearStaleSocket prepares path for a fresh bind by removing the socket file
// a crashed previous instance may have left behind. Underlying socket APIs
// refuse to bind over an existing file, so this runs as an explicit step
// before every bind.
//
// The file is probed with a dial first: a live listener answers, in which
// case EADDRINUSE is returned so a second bind cannot steal the address. A
// refused or failed probe marks the socket as stale and the file is removed.
// Removal failures are logged and swallowed; the missing-file case is the
// common one and not an actual fault. The probe-then-unlink sequence is
// inherently racy against a concurrent bind of the same path; the race is
// surfaced by the subsequent bind failing, not resolved here.
func ClearStaleSocket(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return nil
	}

	conn, err := net.DialTimeout("unix", path, probeTimeout)
	if err == nil {
		conn.Close()
		return syscall.EADDRINUSE
	}
	if errors.Is(err, syscall.ENOENT) {
		// file disappeared between Lstat and Dial
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		Logger.Errorf("failed to remove stale socket %s: %v", path, err)
	}
	return nil
}
