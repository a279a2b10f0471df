package ipc

import (
	"context"
	"strings"
	"unicode/utf8"
)

// DecodeLossy converts raw message bytes to a string, replacing invalid UTF-8
// sequences with the Unicode replacement character. Decoding never fails.
func DecodeLossy(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// ReadTyped reads one message from c and converts the decoded text into a
// value via the caller supplied conversion.
//
// Usage:
//
//	cmd, err := ipc.ReadTyped(ctx, conn, ParseCommand)
func ReadTyped[T any](ctx context.Context, c Conn, conv func(string) T) (T, error) {
	text, err := c.ReadText(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return conv(text), nil
}
