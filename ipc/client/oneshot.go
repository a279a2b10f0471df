package client

import (
	"context"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/lwalter/unisock/ipc/blocking"
	"github.com/lwalter/unisock/ipc/common"
)

var Logger = logger.GetLogger("ipc/client")

var oneShotCallsTotal = metrics.NewCounter("ipc_oneshot_calls_total")

// --------------------------------------------------------------------------
// Response Policy
// --------------------------------------------------------------------------

// ResponsePolicy selects, per call, whether SendOneShot waits for a server
// response after writing its payload.
type ResponsePolicy struct {
	wait bool
	buf  []byte
}

// WaitForResponse makes SendOneShot perform exactly one read into buf after
// the payload is written. A response larger than buf is silently truncated to
// len(buf); size the buffer for the largest expected response.
func WaitForResponse(buf []byte) ResponsePolicy {
	return ResponsePolicy{wait: true, buf: buf}
}

// DontWaitForResponse makes SendOneShot return immediately after the payload
// is written, without reading.
func DontWaitForResponse() ResponsePolicy {
	return ResponsePolicy{}
}

// --------------------------------------------------------------------------
// One-shot exchange
// --------------------------------------------------------------------------

// SendOneShot dials the socket identified by name, writes payload in full and
// returns the number of response bytes read: the result of a single read when
// the policy waits for a response, zero otherwise. The connection is closed
// when the call returns, regardless of the path taken, and there is no retry.
//
// Errors are OpErrors from the connect, write or read step; a peer that
// closes without responding surfaces as ErrEndOfStream. A response read is
// bounded by cfg.TimeoutSecond when set.
func SendOneShot(cfg common.Config, payload []byte, name string, policy ResponsePolicy) (int, error) {
	oneShotCallsTotal.Inc()
	Logger.Infof("one-shot exchange with socket: %s", name)

	conn, err := blocking.Dial(cfg, name)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	ctx := context.Background()
	if err := conn.Send(ctx, payload); err != nil {
		return 0, err
	}

	if !policy.wait {
		return 0, nil
	}
	return conn.ReadRaw(ctx, policy.buf)
}
