package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestEngineErrorMatchesSentinel(t *testing.T) {
	err := NewEngineError(ErrCodeRenderTimeout, "marker never appeared", context.DeadlineExceeded)

	if !errors.Is(err, ErrRenderTimeout) {
		t.Error("expected error to match ErrRenderTimeout")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected error to match its underlying cause")
	}
	if errors.Is(err, ErrNavigation) {
		t.Error("did not expect error to match ErrNavigation")
	}

	wrapped := fmt.Errorf("amazon: %w", err)
	if !errors.Is(wrapped, &EngineError{Code: ErrCodeRenderTimeout}) {
		t.Error("expected wrapped error to match by code")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{nil, ""},
		{ErrMalformedPrice, ErrCodeMalformedPrice},
		{fmt.Errorf("wrap: %w", ErrInvalidQuery), ErrCodeInvalidQuery},
		{NewEngineError(ErrCodeNavigation, "dns", errors.New("no such host")), ErrCodeNavigation},
		{context.DeadlineExceeded, ErrCodeRenderTimeout},
		{errors.New("boom"), ErrCodeInternal},
	}

	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("CodeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestEngineErrorMessage(t *testing.T) {
	err := NewEngineError(ErrCodeParse, "bad html", nil).WithDetail("source", "gem")
	if err.Error() != "PARSE_ERROR: bad html" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Details["source"] != "gem" {
		t.Errorf("expected detail to be recorded, got %v", err.Details)
	}
}
