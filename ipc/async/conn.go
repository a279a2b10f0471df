package async

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lwalter/unisock/ipc"
	"github.com/lwalter/unisock/ipc/common"
)

var (
	readBytesTotal    = metrics.NewCounter("ipc_async_read_bytes_total")
	writtenBytesTotal = metrics.NewCounter("ipc_async_written_bytes_total")
)

// Conn is a cancellable connection over a Unix domain socket, produced either
// by a Listener accepting a peer or by Dial. Every operation suspends the
// calling goroutine until the socket is ready or ctx is cancelled.
type Conn struct {
	nc   net.Conn
	cfg  common.Config
	path string
	buf  []byte // internal buffer for text reads

	closeOnce sync.Once
	closeErr  error
	onClose   func() // set by the owning listener's registry
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

	expired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		c.nc.SetReadDeadline(time.Now())
		close(expired)
	})

	n, err := c.nc.Read(buf)
	if !stop() {
		// wait until the cancellation's deadline write has landed before
		// clearing it, otherwise a late write would stick permanently
		<-expired
		c.nc.SetReadDeadline(time.Time{})
	}

	if n > 0 {
		readBytesTotal.Add(n)
		return n, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
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

	expired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		c.nc.SetWriteDeadline(time.Now())
		close(expired)
	})

	_, err := c.nc.Write(payload)
	if !stop() {
		<-expired
		c.nc.SetWriteDeadline(time.Time{})
	}

	if err != nil {
		// an aborted write leaves the stream position undefined, the caller
		// drops the connection either way
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ipc.OpError{Op: ipc.OpWrite, Path: c.path, Err: err}
	}
	writtenBytesTotal.Add(len(payload))
	return nil
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.nc.Close()
		if c.onClose != nil {
			c.onClose()
		}
	})
	return c.closeErr
}
