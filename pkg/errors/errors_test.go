package errors

import (
	"fmt"
	"testing"
)

func TestWrappedSentinelsMatch(t *testing.T) {
	err := fmt.Errorf("upsert count: %w", ErrConflict)
	if !Is(err, ErrConflict) {
		t.Error("包装后的 ErrConflict 应可识别")
	}
	if Is(err, ErrValidation) {
		t.Error("ErrConflict 不应匹配 ErrValidation")
	}
}

func TestIsClientError(t *testing.T) {
	cases := map[error]bool{
		fmt.Errorf("x: %w", ErrValidation):        true,
		fmt.Errorf("x: %w", ErrUnknownPreference): true,
		fmt.Errorf("x: %w", ErrConflict):          false,
		fmt.Errorf("x: %w", ErrConfiguration):     false,
		fmt.Errorf("x: %w", ErrTransport):         false,
	}
	for err, want := range cases {
		if got := IsClientError(err); got != want {
			t.Errorf("%v: 期望 %v，实际=%v", err, want, got)
		}
	}
}
