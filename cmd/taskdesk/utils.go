package main

import "strings"

// splitCommaList splits a comma-separated flag value, dropping blanks.
func splitCommaList(value string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
