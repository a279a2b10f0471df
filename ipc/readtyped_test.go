package ipc

import (
	"context"
	"strconv"
	"strings"
	"testing"
)

// fakeConn is an in-memory Conn serving queued messages, one per read.
type fakeConn struct {
	messages [][]byte
}

func (c *fakeConn) ReadRaw(_ context.Context, buf []byte) (int, error) {
	if len(c.messages) == 0 {
		return 0, &OpError{Op: OpRead, Path: "fake", Err: ErrEndOfStream}
	}
	msg := c.messages[0]
	c.messages = c.messages[1:]
	return copy(buf, msg), nil
}

func (c *fakeConn) ReadText(ctx context.Context) (string, error) {
	buf := make([]byte, 1024)
	n, err := c.ReadRaw(ctx, buf)
	if err != nil {
		return "", err
	}
	return DecodeLossy(buf[:n]), nil
}

func (c *fakeConn) Send(_ context.Context, _ []byte) error { return nil }
func (c *fakeConn) Close() error                           { return nil }

// TestReadTyped tests the conversion layering on top of text reads
func TestReadTyped(t *testing.T) {
	ctx := context.Background()

	t.Run("string identity", func(t *testing.T) {
		conn := &fakeConn{messages: [][]byte{[]byte("hello")}}
		got, err := ReadTyped(ctx, conn, func(s string) string { return s })
		if err != nil {
			t.Fatalf("ReadTyped failed: %v", err)
		}
		if got != "hello" {
			t.Errorf("got %q, want %q", got, "hello")
		}
	})

	t.Run("integer conversion", func(t *testing.T) {
		conn := &fakeConn{messages: [][]byte{[]byte("42")}}
		got, err := ReadTyped(ctx, conn, func(s string) int {
			n, _ := strconv.Atoi(s)
			return n
		})
		if err != nil {
			t.Fatalf("ReadTyped failed: %v", err)
		}
		if got != 42 {
			t.Errorf("got %d, want 42", got)
		}
	})

	t.Run("end of stream propagates", func(t *testing.T) {
		conn := &fakeConn{}
		_, err := ReadTyped(ctx, conn, func(s string) string { return s })
		if !IsEndOfStream(err) {
			t.Errorf("expected end of stream, got %v", err)
		}
	})
}

// TestDecodeLossy tests that invalid UTF-8 is replaced, never fatal
func TestDecodeLossy(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"valid ascii", []byte("Hello, world!"), "Hello, world!"},
		{"valid multibyte", []byte("héllo"), "héllo"},
		{"invalid byte replaced", []byte{'a', 0xff, 'b'}, "a�b"},
		{"truncated sequence replaced", []byte{0xe2, 0x82}, "�"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeLossy(tt.input)
			if got != tt.want {
				t.Errorf("DecodeLossy(%v) = %q, want %q", tt.input, got, tt.want)
			}
			if strings.Contains(got, "\x00") {
				t.Errorf("unexpected NUL in decoded text %q", got)
			}
		})
	}
}
