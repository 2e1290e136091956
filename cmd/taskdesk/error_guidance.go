package main

import (
	"context"
	"errors"
	"net"

	"taskdesk/internal/api"
)

// codeHints are shown under an API error with the matching wire code.
var codeHints = map[string]string{
	"unauthorized":       "hint: set TASKDESK_USER and TASKDESK_PASSWORD for a user with a password.",
	"forbidden":          "hint: admin commands need TASKDESK_ADMIN_TOKEN or an admin user; transitions must be sent as yourself.",
	"resource_exhausted": "hint: retry shortly; too many failed logins or concurrent bulk requests.",
	"not_found":          "hint: check the id, username or project code; `taskdesk tree` lists row keys.",
	"":                   "hint: verify TASKDESK_API_URL points to a taskdesk server.",
}

var networkHints = []string{
	"hint: ensure a taskdesk server is running at TASKDESK_API_URL.",
	"hint: start local server manually with: taskdesk srv",
	"hint: you can increase TASKDESK_HTTP_TIMEOUT for slower environments.",
}

// formatCLIError returns the error line followed by remediation hints.
func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}
	lines := []string{err.Error()}

	var apiErr *api.APIError
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		lines = append(lines, codeHints[apiErr.Code])
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
	case errors.Is(err, errNothingAttempted):
		lines = append(lines, "hint: run `taskdesk tree` to see which actions each row allows.")
	case errors.Is(err, errNoActor):
		lines = append(lines, "hint: create the user first with: taskdesk user create <username> --role <role>")
	case errors.Is(err, context.DeadlineExceeded):
		lines = append(lines, "hint: request timed out; check server health or increase TASKDESK_HTTP_TIMEOUT.")
	case errors.As(err, &netErr):
		lines = append(lines, networkHints...)
	}
	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := lines[:0:0]
	for _, line := range lines {
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}
