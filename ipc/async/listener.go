package async

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/lwalter/unisock/ipc"
	"github.com/lwalter/unisock/ipc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("ipc/async")

var (
	acceptsTotal      = metrics.NewCounter("ipc_async_accepts_total")
	acceptErrorsTotal = metrics.NewCounter("ipc_async_accept_errors_total")
)

// Listener is the cancellable implementation of ipc.Listener. It owns exactly
// one bound server socket descriptor plus a registry of the connections it
// has accepted, so Close can tear down the whole connection set.
type Listener struct {
	cfg    common.Config
	path   string
	ln     *net.UnixListener
	conns  *xsync.MapOf[uint64, *Conn]
	nextID uint64 // atomic counter for registry keys
}

var _ ipc.Listener = (*Listener)(nil)

// Bind resolves name against cfg.BaseDir, clears a stale socket file left by
// a previous instance and binds a new Unix domain server socket at the
// resolved path. Failure semantics match blocking.Bind.
func Bind(cfg common.Config, name string) (*Listener, error) {
	cfg = cfg.Normalized()
	path := ipc.NewPathResolver(cfg.BaseDir).Resolve(name)

	Logger.Infof("binding to socket: %s", path)

	if err := ipc.ClearStaleSocket(path); err != nil {
		return nil, &ipc.OpError{Op: ipc.OpBind, Path: path, Err: err}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, &ipc.OpError{Op: ipc.OpBind, Path: path, Err: err}
	}

	return &Listener{
		cfg:   cfg,
		path:  path,
		ln:    ln.(*net.UnixListener),
		conns: xsync.NewMapOf[uint64, *Conn](),
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ipc.Listener)
// --------------------------------------------------------------------------

func (l *Listener) AcceptOne(ctx context.Context) (ipc.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// expire the accept deadline if ctx is cancelled while we are parked
	expired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		l.ln.SetDeadline(time.Now())
		close(expired)
	})

	nc, err := l.ln.Accept()
	if !stop() {
		// cancellation fired; wait until its deadline write has landed, then
		// restore the listener for future accepts
		<-expired
		l.ln.SetDeadline(time.Time{})
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		acceptErrorsTotal.Inc()
		return nil, &ipc.OpError{Op: ipc.OpAccept, Path: l.path, Err: err}
	}

	acceptsTotal.Inc()
	return l.register(nc), nil
}

func (l *Listener) Serve(ctx context.Context, handler ipc.HandlerFunc) error {
	for {
		conn, err := l.AcceptOne(ctx)
		if err != nil {
			return err
		}
		if err := serveConn(conn, handler); err != nil {
			return err
		}
	}
}

func (l *Listener) Path() string {
	return l.path
}

// Close releases the bound descriptor and closes every connection accepted by
// this listener that is still open, unblocking their suspended readers.
func (l *Listener) Close() error {
	err := l.ln.Close()
	l.conns.Range(func(id uint64, conn *Conn) bool {
		conn.Close()
		return true
	})
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// register wraps an accepted socket and tracks it until it is closed.
func (l *Listener) register(nc net.Conn) *Conn {
	id := atomic.AddUint64(&l.nextID, 1)
	conn := newConn(nc, l.cfg, l.path)
	conn.onClose = func() {
		l.conns.Delete(id)
	}
	l.conns.Store(id, conn)
	return conn
}

// serveConn hands the connection to exactly one handler invocation and closes
// it afterwards.
func serveConn(conn ipc.Conn, handler ipc.HandlerFunc) error {
	defer conn.Close()
	return handler(conn)
}
