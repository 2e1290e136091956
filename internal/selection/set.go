package selection

import "sort"

// Set is a set of row keys.
type Set map[string]struct{}

// NewSet builds a set from keys.
func NewSet(keys ...string) Set {
	set := make(Set, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Keys returns the keys in sorted order.
func (s Set) Keys() []string {
	out := make([]string, 0, len(s))
	for key := range s {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for key := range s {
		out[key] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same keys.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for key := range s {
		if !other.Has(key) {
			return false
		}
	}
	return true
}
