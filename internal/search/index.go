package search

import (
	"strings"

	"taskdesk/internal/hierarchy"
	"taskdesk/internal/models"
)

// Match is the per-node search outcome.
type Match struct {
	SelfMatch     bool `json:"selfMatch"`
	AnyChildMatch bool `json:"anyChildMatch"`
}

// Any reports whether the node or one of its children matched.
func (m Match) Any() bool {
	return m.SelfMatch || m.AnyChildMatch
}

// Result is the outcome of evaluating one query over a whole tree. It is
// rebuilt from scratch on every evaluation.
type Result struct {
	Query    string           `json:"query"`
	Filtered bool             `json:"filtered"`
	Matches  map[string]Match `json:"matches"`
	Expanded map[string]bool  `json:"expanded"`
	Visible  map[string]bool  `json:"visible"`
}

// MatchTask reports whether any field of task contains query, ignoring case.
func MatchTask(task models.Task, query string, fields []FieldPath) bool {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return false
	}
	for _, field := range fields {
		for _, value := range Resolve(task, field) {
			if strings.Contains(strings.ToLower(value), needle) {
				return true
			}
		}
	}
	return false
}

// MatchNode evaluates the node and its direct children. It does not recurse
// further than one level.
func MatchNode(node *hierarchy.Node, query string, fields []FieldPath) Match {
	if node == nil {
		return Match{}
	}
	match := Match{SelfMatch: MatchTask(node.Task, query, fields)}
	for _, child := range node.Children {
		if MatchTask(child.Task, query, fields) {
			match.AnyChildMatch = true
			break
		}
	}
	return match
}

// Evaluate matches query against every root and derives the auto-expand and
// visibility sets. Visibility is decided per subtree: a visible story shows
// all of its children. A blank query filters nothing and expands nothing.
func Evaluate(tree hierarchy.Tree, query string, fields []FieldPath) Result {
	result := Result{
		Query:    strings.TrimSpace(query),
		Matches:  make(map[string]Match),
		Expanded: make(map[string]bool),
		Visible:  make(map[string]bool),
	}

	if result.Query == "" {
		tree.Walk(func(node *hierarchy.Node, _ int) {
			result.Visible[node.Key] = true
		})
		return result
	}
	result.Filtered = true

	for _, root := range tree.Roots {
		match := MatchNode(root, result.Query, fields)
		result.Matches[root.Key] = match
		for _, child := range root.Children {
			result.Matches[child.Key] = Match{SelfMatch: MatchTask(child.Task, result.Query, fields)}
		}

		visible := match.Any()
		if root.Kind == hierarchy.KindStandalone {
			visible = match.SelfMatch
		}
		if !visible {
			continue
		}
		result.Visible[root.Key] = true
		for _, child := range root.Children {
			result.Visible[child.Key] = true
		}
		if root.HasChildren() {
			result.Expanded[root.Key] = true
		}
	}

	return result
}

// ExpandedKeys returns the auto-expand set as a list in tree order.
func (r Result) ExpandedKeys(tree hierarchy.Tree) []string {
	out := make([]string, 0, len(r.Expanded))
	for _, root := range tree.Roots {
		if r.Expanded[root.Key] {
			out = append(out, root.Key)
		}
	}
	return out
}
