// Package selection enforces that a selection never holds both a story row
// and one of its child rows.
package selection

import (
	"fmt"
	"strings"

	"taskdesk/internal/hierarchy"
)

// ConflictWarning is the aggregated message shown when rows were dropped.
const ConflictWarning = "A task and its subtasks cannot be selected together; conflicting rows were deselected"

// Result is the outcome of resolving one proposed selection.
type Result struct {
	Resolved    Set      `json:"resolved"`
	HadConflict bool     `json:"hadConflict"`
	Dropped     []string `json:"dropped,omitempty"`
}

// Warning returns the single aggregated warning, or "" when nothing was dropped.
func (r Result) Warning() string {
	if !r.HadConflict {
		return ""
	}
	return fmt.Sprintf("%s (%d)", ConflictWarning, len(r.Dropped))
}

// IsChildOf reports whether key is a child row key of parentKey.
func IsChildOf(key, parentKey string) bool {
	prefix := parentKey + hierarchy.ChildKeySeparator
	return len(key) > len(prefix) && strings.HasPrefix(key, prefix)
}

// Apply resolves proposed against the current selection. The proposed set is
// evaluated as a whole. For every parent/child pair present in it, the row
// that was newly proposed is dropped: a child added under a selected parent,
// or a parent added over selected children. When both rows are new the child
// is dropped.
func Apply(current, proposed Set) Result {
	dropped := make(map[string]bool)

	keys := proposed.Keys()
	for _, parent := range keys {
		for _, child := range keys {
			if !IsChildOf(child, parent) {
				continue
			}
			if dropped[parent] || dropped[child] {
				continue
			}
			parentIsNew := !current.Has(parent)
			childIsNew := !current.Has(child)
			if parentIsNew && !childIsNew {
				dropped[parent] = true
				continue
			}
			dropped[child] = true
		}
	}

	resolved := make(Set, len(proposed))
	result := Result{}
	for _, key := range keys {
		if dropped[key] {
			result.Dropped = append(result.Dropped, key)
			continue
		}
		resolved[key] = struct{}{}
	}
	result.Resolved = resolved
	result.HadConflict = len(result.Dropped) > 0
	return result
}
