package blocking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lwalter/unisock/ipc"
)

// newPair returns a connected server/client conn pair over a fresh socket.
func newPair(t *testing.T) (server, client ipc.Conn) {
	t.Helper()
	c := testConfig(t)
	ctx := context.Background()

	ln, err := Bind(c, "pair.sock")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan ipc.Conn, 1)
	go func() {
		conn, err := ln.AcceptOne(ctx)
		if err != nil {
			return
		}
		accepted <- conn
	}()

	cl, err := Dial(c, "pair.sock")
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { cl.Close() })

	srv := <-accepted
	t.Cleanup(func() { srv.Close() })
	return srv, cl
}

// TestReadTextLossyDecode tests that invalid UTF-8 from a peer is replaced
func TestReadTextLossyDecode(t *testing.T) {
	ctx := context.Background()
	server, client := newPair(t)

	if err := client.Send(ctx, []byte{'h', 'i', 0xff, '!'}); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	got, err := server.ReadText(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got != "hi�!" {
		t.Errorf("decoded %q, want %q", got, "hi�!")
	}
}

// TestReadTypedOverSocket tests the typed read path end to end
func TestReadTypedOverSocket(t *testing.T) {
	ctx := context.Background()
	server, client := newPair(t)

	if err := client.Send(ctx, []byte("shout")); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	got, err := ipc.ReadTyped(ctx, server, strings.ToUpper)
	if err != nil {
		t.Fatalf("ReadTyped failed: %v", err)
	}
	if got != "SHOUT" {
		t.Errorf("got %q, want %q", got, "SHOUT")
	}
}

// TestReadTimeout tests the configured per-operation deadline
func TestReadTimeout(t *testing.T) {
	c := testConfig(t)
	c.TimeoutSecond = 1
	ctx := context.Background()

	ln, err := Bind(c, "slow.sock")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	defer ln.Close()

	accepted := make(chan ipc.Conn, 1)
	go func() {
		// peer connects and then stays silent
		if conn, err := ln.AcceptOne(ctx); err == nil {
			accepted <- conn
		}
	}()

	conn, err := Dial(c, "slow.sock")
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	defer func() {
		select {
		case peer := <-accepted:
			peer.Close()
		default:
		}
	}()

	start := time.Now()
	_, err = conn.ReadRaw(ctx, make([]byte, 64))
	if !ipc.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
		t.Errorf("deadline fired suspiciously early after %s", elapsed)
	}
}

// TestSendOnClosedConn tests the write failure mode
func TestSendOnClosedConn(t *testing.T) {
	ctx := context.Background()
	_, client := newPair(t)

	client.Close()
	err := client.Send(ctx, []byte("too late"))
	if err == nil {
		t.Fatal("send on a closed connection should fail")
	}
	assertOp(t, err, ipc.OpWrite)
}

// TestEntryContextCheck tests that an already-cancelled ctx short-circuits
func TestEntryContextCheck(t *testing.T) {
	server, client := newPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := server.ReadRaw(ctx, make([]byte, 8)); err != context.Canceled {
		t.Errorf("ReadRaw with cancelled ctx returned %v", err)
	}
	if err := client.Send(ctx, []byte("x")); err != context.Canceled {
		t.Errorf("Send with cancelled ctx returned %v", err)
	}
}
