// Package format renders CLI payloads.
package format

import (
	"encoding/json"
	"io"
)

// Formatter abstracts output formatting.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes one JSON document per payload. Indent, when set, is
// used for nested levels.
type JSONFormatter struct {
	Indent string
}

// Write encodes payload to w. Nil slices encode as empty arrays for the
// common CLI payloads so scripts can always iterate.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(normalize(payload))
}

func normalize(payload any) any {
	switch v := payload.(type) {
	case []string:
		if v == nil {
			return []string{}
		}
	case []any:
		if v == nil {
			return []any{}
		}
	}
	return payload
}
