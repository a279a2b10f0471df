package blocking

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lwalter/unisock/ipc"
	"github.com/lwalter/unisock/ipc/common"
)

var (
	readBytesTotal    = metrics.NewCounter("ipc_blocking_read_bytes_total")
	writtenBytesTotal = metrics.NewCounter("ipc_blocking_written_bytes_total")
)

// Conn is a blocking connection over a Unix domain socket, produced either by
// a Listener accepting a peer or by Dial. Both provenances expose the same
// capability set.
type Conn struct {
	nc   net.Conn
	cfg  common.Config
	path string
	buf  []byte // internal buffer for text reads
}

var _ ipc.Conn = (*Conn)(nil)

func newConn(nc net.Conn, cfg common.Config, path string) *Conn {
	return &Conn{
		nc:   nc,
		cfg:  cfg,
		path: path,
		buf:  make([]byte, cfg.BufferSize),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ipc.Conn)
// --------------------------------------------------------------------------

func (c *Conn) ReadRaw(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := c.setDeadline(c.nc.SetReadDeadline); err != nil {
		return 0, &ipc.OpError{Op: ipc.OpRead, Path: c.path, Err: err}
	}

	n, err := c.nc.Read(buf)
	if n > 0 {
		// data first, a pending error resurfaces on the next read
		readBytesTotal.Add(n)
		return n, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return 0, &ipc.OpError{Op: ipc.OpRead, Path: c.path, Err: ipc.ErrEndOfStream}
	}
	return 0, &ipc.OpError{Op: ipc.OpRead, Path: c.path, Err: err}
}

func (c *Conn) ReadText(ctx context.Context) (string, error) {
	n, err := c.ReadRaw(ctx, c.buf)
	if err != nil {
		return "", err
	}
	return ipc.DecodeLossy(c.buf[:n]), nil
}

func (c *Conn) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.setDeadline(c.nc.SetWriteDeadline); err != nil {
		return &ipc.OpError{Op: ipc.OpWrite, Path: c.path, Err: err}
	}

	if _, err := c.nc.Write(payload); err != nil {
		return &ipc.OpError{Op: ipc.OpWrite, Path: c.path, Err: err}
	}
	writtenBytesTotal.Add(len(payload))
	return nil
}

func (c *Conn) Close() error {
	return c.nc.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// setDeadline applies the configured per-operation timeout via the given
// deadline setter. A zero timeout leaves the operation unbounded.
func (c *Conn) setDeadline(set func(time.Time) error) error {
	if c.cfg.TimeoutSecond <= 0 {
		return nil
	}
	return set(time.Now().Add(time.Duration(c.cfg.TimeoutSecond) * time.Second))
}
