package pager

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorIsMatchesByKindThroughWrapping(t *testing.T) {
	cause := errors.New("disk gone")
	err := fmt.Errorf("reading page: %w", newErr(ErrIo, "read", cause))

	if !errors.Is(err, ErrIoSentinel) {
		t.Fatal("expected errors.Is to match ErrIoSentinel through wrapping")
	}
	if errors.Is(err, ErrDecodeSentinel) {
		t.Fatal("did not expect errors.Is to match a different kind")
	}

	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatal("expected errors.As to unwrap to *Error")
	}
	if pe.Kind != ErrIo {
		t.Fatalf("expected ErrIo, got %v", pe.Kind)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the original cause via Unwrap")
	}
}

func TestErrorStringIncludesKindAndMessage(t *testing.T) {
	err := newErr(ErrDecode, "short buffer", nil)
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error message")
	}
	if !strings.Contains(msg, "decode") {
		t.Fatalf("expected message to include the kind %q, got %q", "decode", msg)
	}
	if !strings.Contains(msg, "short buffer") {
		t.Fatalf("expected message to include %q, got %q", "short buffer", msg)
	}
}
