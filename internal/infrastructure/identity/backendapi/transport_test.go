package backendapi

import (
	"errors"
	"testing"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "list", path: "/v1/users", expected: "/v1/users"},
		{name: "user id", path: "/v1/users/user_2abcDEF", expected: "/v1/users/:id"},
		{name: "user sub-resource", path: "/v1/users/user_2abc/metadata", expected: "/v1/users/:id/metadata"},
		{name: "session", path: "/v1/sessions/sess_123/verify", expected: "/v1/sessions/:id/verify"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeRoute(tt.path); got != tt.expected {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   string
	}{
		{name: "bad request", statusCode: 400, expected: "bad_request"},
		{name: "unauthorized", statusCode: 401, expected: "unauthorized"},
		{name: "not found", statusCode: 404, expected: "not_found"},
		{name: "unprocessable", statusCode: 422, expected: "unprocessable"},
		{name: "rate limited", statusCode: 429, expected: "rate_limited"},
		{name: "server error", statusCode: 503, expected: "server_error"},
		{name: "other client error", statusCode: 409, expected: "client_error"},
		{name: "timeout", err: errors.New("context deadline exceeded"), expected: "timeout"},
		{name: "connection", err: errors.New("dial tcp: connection refused"), expected: "connection"},
		{name: "other network", err: errors.New("EOF"), expected: "network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.statusCode, tt.err); got != tt.expected {
				t.Errorf("classifyError() = %q, want %q", got, tt.expected)
			}
		})
	}
}
