package main

import (
	"context"
	"fmt"
	"net"
	"slices"
	"testing"

	"taskdesk/internal/api"
)

func TestFormatCLIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "network",
			err:  &net.DNSError{Err: "dial tcp: connection refused", Name: "127.0.0.1", IsTemporary: true},
			want: "hint: start local server manually with: taskdesk srv",
		},
		{
			name: "unknown service",
			err:  &api.APIError{Status: 404, Message: "api error: 404 Not Found"},
			want: "hint: verify TASKDESK_API_URL points to a taskdesk server.",
		},
		{
			name: "unauthorized",
			err:  &api.APIError{Status: 401, Code: "unauthorized", Message: "credentials required"},
			want: "hint: set TASKDESK_USER and TASKDESK_PASSWORD for a user with a password.",
		},
		{
			name: "internal",
			err:  &api.APIError{Status: 500, Code: "internal", Message: "internal error"},
			want: "hint: server returned an internal error; check server logs for details.",
		},
		{
			name: "timeout",
			err:  fmt.Errorf("list tasks: %w", context.DeadlineExceeded),
			want: "hint: request timed out; check server health or increase TASKDESK_HTTP_TIMEOUT.",
		},
		{
			name: "no actor",
			err:  errNoActor,
			want: "hint: create the user first with: taskdesk user create <username> --role <role>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := formatCLIError(tt.err)
			if lines[0] != tt.err.Error() {
				t.Fatalf("expected error first, got %v", lines)
			}
			if !slices.Contains(lines, tt.want) {
				t.Fatalf("expected %q in %v", tt.want, lines)
			}
		})
	}
}

func TestFormatCLIErrorNil(t *testing.T) {
	if lines := formatCLIError(nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
