package session

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connect timeout", ErrConnectTimeout, true},
		{"ping timeout", ErrPingTimeout, true},
		{"invalid state", ErrInvalidState, true},
		{"wrapped ping timeout", fmt.Errorf("cycle: %w", ErrPingTimeout), true},
		{"unclean close", &CloseError{Code: 1006, Clean: false}, true},
		{"clean close", &CloseError{Code: 1000, Clean: true}, false},
		{"unclassified", errors.New("disk on fire"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCloseError_Message(t *testing.T) {
	clean := &CloseError{Code: 1000, Reason: "bye", Clean: true}
	if !strings.Contains(clean.Error(), "clean") || !strings.Contains(clean.Error(), "bye") {
		t.Errorf("unexpected message: %q", clean.Error())
	}

	unclean := &CloseError{Code: 1006}
	if !strings.Contains(unclean.Error(), "unclean") {
		t.Errorf("unexpected message: %q", unclean.Error())
	}
}
