package async

import (
	"context"
	"net"
	"os"

	"github.com/lwalter/unisock/ipc"
	"github.com/lwalter/unisock/ipc/common"
)

// Dial opens a persistent cancellable connection to the socket identified by
// name. The dial itself honors ctx, so a caller can abandon a connect attempt
// against a wedged listener. The base directory is created first; a missing
// or unreachable listener fails with an OpError (Op == OpConnect).
func Dial(ctx context.Context, cfg common.Config, name string) (*Conn, error) {
	cfg = cfg.Normalized()
	resolver := ipc.NewPathResolver(cfg.BaseDir)

	if err := os.MkdirAll(resolver.Base(), 0o755); err != nil {
		return nil, &ipc.OpError{Op: ipc.OpConnect, Path: resolver.Base(), Err: err}
	}

	path := resolver.Resolve(name)
	Logger.Infof("connecting to socket: %s", path)

	var dialer net.Dialer
	nc, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ipc.OpError{Op: ipc.OpConnect, Path: path, Err: err}
	}

	return newConn(nc, cfg, path), nil
}
