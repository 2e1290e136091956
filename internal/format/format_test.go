package format

import (
	"bytes"
	"testing"
)

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name    string
		f       JSONFormatter
		payload any
		want    string
	}{
		{name: "compact", payload: map[string]int{"created": 2}, want: "{\"created\":2}\n"},
		{name: "indented", f: JSONFormatter{Indent: "  "}, payload: map[string]int{"created": 2}, want: "{\n  \"created\": 2\n}\n"},
		{name: "nil strings", payload: []string(nil), want: "[]\n"},
		{name: "no html escaping", payload: "a<b", want: "\"a<b\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.f.Write(&buf, tt.payload); err != nil {
				t.Fatalf("write: %v", err)
			}
			if buf.String() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}
