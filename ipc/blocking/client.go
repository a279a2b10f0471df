package blocking

import (
	"net"
	"os"

	"github.com/lwalter/unisock/ipc"
	"github.com/lwalter/unisock/ipc/common"
)

// Dial opens a persistent blocking connection to the socket identified by
// name. The base directory is created first so a client can come up before
// any server has populated it; a missing or unreachable listener fails with
// an OpError (Op == OpConnect).
func Dial(cfg common.Config, name string) (*Conn, error) {
	cfg = cfg.Normalized()
	resolver := ipc.NewPathResolver(cfg.BaseDir)

	if err := os.MkdirAll(resolver.Base(), 0o755); err != nil {
		return nil, &ipc.OpError{Op: ipc.OpConnect, Path: resolver.Base(), Err: err}
	}

	path := resolver.Resolve(name)
	Logger.Infof("connecting to socket: %s", path)

	nc, err := net.Dial("unix", path)
	if err != nil {
		return nil, &ipc.OpError{Op: ipc.OpConnect, Path: path, Err: err}
	}

	return newConn(nc, cfg, path), nil
}
