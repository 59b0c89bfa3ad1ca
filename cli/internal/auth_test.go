package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 seconds"},
		{1 * time.Second, "1 second"},
		{45 * time.Second, "45 seconds"},
		{90 * time.Minute, "1 hour and 30 minutes"},
		{-2 * time.Hour, "2 hours"},
		{49*time.Hour + 5*time.Minute, "2 days, 1 hour and 5 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatDuration(tt.d); got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", plain, "boom"},
		{"unauthenticated", status.Error(codes.Unauthenticated, "token expired"), "chirp auth login"},
		{"not found", status.Error(codes.NotFound, "user not found"), "not found: user not found"},
		{"rate limited", status.Error(codes.ResourceExhausted, "too many requests"), "rate limited"},
		{"internal", status.Error(codes.Internal, "oops"), "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := withHint(tt.err)
			if tt.want == "" {
				if err != nil {
					t.Errorf("withHint() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("withHint() = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}
