package types

import (
	"errors"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrGenerationFailed, "llm call failed").
		WithCause(root).
		WithHTTPStatus(500).
		WithRetryable(true).
		WithProvider("openai")

	if GetErrorCode(err) != ErrGenerationFailed {
		t.Fatalf("expected code %s, got %s", ErrGenerationFailed, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestError_PlainErrorHelpers(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain")
	if IsRetryable(plain) {
		t.Fatalf("plain errors are not retryable")
	}
	if GetErrorCode(plain) != "" {
		t.Fatalf("plain errors carry no code")
	}
}
