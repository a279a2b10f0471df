package blocking

import (
	"context"
	"net"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/lwalter/unisock/ipc"
	"github.com/lwalter/unisock/ipc/common"
)

var Logger = logger.GetLogger("ipc/blocking")

var (
	acceptsTotal      = metrics.NewCounter("ipc_blocking_accepts_total")
	acceptErrorsTotal = metrics.NewCounter("ipc_blocking_accept_errors_total")
)

// Listener is the blocking implementation of ipc.Listener. It owns exactly
// one bound server socket descriptor and must not be copied or shared.
type Listener struct {
	cfg  common.Config
	path string
	ln   net.Listener
}

var _ ipc.Listener = (*Listener)(nil)

// Bind resolves name against cfg.BaseDir, clears a stale socket file left by
// a previous instance and binds a new Unix domain server socket at the
// resolved path. Binding fails with an OpError (Op == OpBind) when the path
// is unusable: permission denied, missing directory, or another live listener
// already bound there.
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

	return &Listener{cfg: cfg, path: path, ln: ln}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ipc.Listener)
// --------------------------------------------------------------------------

func (l *Listener) AcceptOne(ctx context.Context) (ipc.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nc, err := l.ln.Accept()
	if err != nil {
		acceptErrorsTotal.Inc()
		return nil, &ipc.OpError{Op: ipc.OpAccept, Path: l.path, Err: err}
	}

	acceptsTotal.Inc()
	return newConn(nc, l.cfg, l.path), nil
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

func (l *Listener) Close() error {
	return l.ln.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// serveConn hands the connection to exactly one handler invocation and closes
// it afterwards. Ownership is transferred to the handler in full; the serve
// loop keeps no reference.
func serveConn(conn ipc.Conn, handler ipc.HandlerFunc) error {
	defer conn.Close()
	return handler(conn)
}
