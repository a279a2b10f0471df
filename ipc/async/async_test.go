package async

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lwalter/unisock/ipc"
	"github.com/lwalter/unisock/ipc/common"
)

func testConfig(t *testing.T) common.Config {
	t.Helper()
	return common.Config{BaseDir: t.TempDir()}
}

// assertOp pulls the OpError out of err and checks which operation failed
func assertOp(t *testing.T, err error, want ipc.Op) {
	t.Helper()
	var opErr *ipc.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *ipc.OpError, got %v (%T)", err, err)
	}
	if opErr.Op != want {
		t.Errorf("expected failed op %q, got %q (%v)", want, opErr.Op, err)
	}
}

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

	cl, err := Dial(ctx, c, "pair.sock")
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { cl.Close() })

	srv := <-accepted
	t.Cleanup(func() { srv.Close() })
	return srv, cl
}

// TestAcceptCancellation tests that cancelling ctx aborts a suspended accept
// and leaves the listener usable
func TestAcceptCancellation(t *testing.T) {
	c := testConfig(t)

	ln, err := Bind(c, "cancel-accept.sock")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	defer ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = ln.AcceptOne(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation took too long: %s", elapsed)
	}

	// the listener must still accept after an aborted operation
	go func() {
		if conn, err := Dial(context.Background(), c, "cancel-accept.sock"); err == nil {
			defer conn.Close()
		}
	}()
	conn, err := ln.AcceptOne(context.Background())
	if err != nil {
		t.Fatalf("accept after cancellation failed: %v", err)
	}
	conn.Close()
}

// TestAcceptRetryAfterCancellations tests that repeated aborted accepts never
// leave a stuck deadline on the listener
func TestAcceptRetryAfterCancellations(t *testing.T) {
	c := testConfig(t)

	ln, err := Bind(c, "retry.sock")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	defer ln.Close()

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		if _, err := ln.AcceptOne(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("aborted accept %d returned %v", i+1, err)
		}
	}

	// every retry with a pending peer must succeed, never time out
	for i := 0; i < 3; i++ {
		go func() {
			if conn, err := Dial(context.Background(), c, "retry.sock"); err == nil {
				defer conn.Close()
			}
		}()
		conn, err := ln.AcceptOne(context.Background())
		if err != nil {
			t.Fatalf("accept %d after cancellations failed: %v", i+1, err)
		}
		conn.Close()
	}
}

// TestReadCancellation tests that cancelling ctx aborts a suspended read
func TestReadCancellation(t *testing.T) {
	server, _ := newPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := server.ReadRaw(ctx, make([]byte, 64))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// TestReadAfterCancellation tests that an aborted read never leaves a stuck
// deadline on the connection
func TestReadAfterCancellation(t *testing.T) {
	server, client := newPair(t)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		if _, err := server.ReadRaw(ctx, make([]byte, 64)); !errors.Is(err, context.Canceled) {
			t.Fatalf("aborted read %d returned %v", i+1, err)
		}
	}

	ctx := context.Background()
	if err := client.Send(ctx, []byte("still alive")); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	got, err := server.ReadText(ctx)
	if err != nil {
		t.Fatalf("read after cancellations failed: %v", err)
	}
	if got != "still alive" {
		t.Errorf("read %q, want %q", got, "still alive")
	}
}

// TestDeadlineCancellation tests ctx deadlines on suspended reads
func TestDeadlineCancellation(t *testing.T) {
	server, _ := newPair(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := server.ReadRaw(ctx, make([]byte, 64))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

// TestRoundTrip tests the same send/read contract as the blocking flavor
func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	server, client := newPair(t)

	if err := client.Send(ctx, []byte("Hello, world!")); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	buf := make([]byte, 512)
	n, err := server.ReadRaw(ctx, buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if n != 13 || !bytes.Equal(buf[:n], []byte("Hello, world!")) {
		t.Errorf("read %d bytes %q", n, buf[:n])
	}

	// the connection survives an operation and is usable again
	if err := server.Send(ctx, []byte("World!")); err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	got, err := client.ReadText(ctx)
	if err != nil {
		t.Fatalf("client read failed: %v", err)
	}
	if got != "World!" {
		t.Errorf("client read %q, want %q", got, "World!")
	}
}

// TestEndOfStream tests that the peer-closed contract matches the blocking flavor
func TestEndOfStream(t *testing.T) {
	ctx := context.Background()
	server, client := newPair(t)

	client.Close()

	n, err := server.ReadRaw(ctx, make([]byte, 64))
	if n != 0 {
		t.Errorf("read after peer close returned %d bytes", n)
	}
	if !ipc.IsEndOfStream(err) {
		t.Errorf("expected end of stream, got %v", err)
	}
	assertOp(t, err, ipc.OpRead)
}

// TestListenerCloseUnblocksConns tests the teardown of tracked connections
func TestListenerCloseUnblocksConns(t *testing.T) {
	c := testConfig(t)
	ctx := context.Background()

	ln, err := Bind(c, "teardown.sock")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	accepted := make(chan ipc.Conn, 1)
	go func() {
		conn, err := ln.AcceptOne(ctx)
		if err != nil {
			return
		}
		accepted <- conn
	}()

	client, err := Dial(ctx, c, "teardown.sock")
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	server := <-accepted

	readDone := make(chan error, 1)
	go func() {
		_, err := server.ReadRaw(ctx, make([]byte, 64))
		readDone <- err
	}()

	// give the reader a moment to park, then tear everything down
	time.Sleep(50 * time.Millisecond)
	ln.Close()

	select {
	case err := <-readDone:
		if err == nil {
			t.Error("read on a torn-down connection should fail")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener close did not unblock the suspended read")
	}
}

// TestDialCancellation tests that the dial itself honors ctx
func TestDialCancellation(t *testing.T) {
	c := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dial(ctx, c, "never.sock")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// TestServeCancellation tests that cancelling ctx ends the serve loop
func TestServeCancellation(t *testing.T) {
	c := testConfig(t)

	ln, err := Bind(c, "serve-cancel.sock")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	defer ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- ln.Serve(ctx, func(conn ipc.Conn) error { return nil })
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-serveDone:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation did not end the serve loop")
	}
}
