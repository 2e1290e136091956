// Package view holds the state of one task table: query, sort, selection and
// expansion. States are values; every transition returns a new State.
package view

import (
	"taskdesk/internal/guard"
	"taskdesk/internal/hierarchy"
	"taskdesk/internal/search"
	"taskdesk/internal/selection"
)

// Config parameterizes a task table.
type Config struct {
	SearchFields []search.FieldPath
	Transitions  []guard.Transition
}

// DefaultConfig searches the default field list and shows every transition.
func DefaultConfig() Config {
	return Config{SearchFields: search.DefaultFields, Transitions: guard.Transitions}
}

func (c Config) fields() []search.FieldPath {
	if len(c.SearchFields) == 0 {
		return search.DefaultFields
	}
	return c.SearchFields
}

// State is the mutable-looking but value-typed state of a task table.
type State struct {
	Query    search.QueryState     `json:"query"`
	Sort     hierarchy.SortOptions `json:"sort"`
	Selected selection.Set         `json:"selected"`
	Expanded selection.Set         `json:"expanded"`
}

// New returns an empty state.
func New() State {
	return State{Selected: selection.NewSet(), Expanded: selection.NewSet()}
}

func (s State) clone() State {
	out := s
	out.Selected = s.Selected.Clone()
	out.Expanded = s.Expanded.Clone()
	return out
}

// WithGlobalQuery activates the global query and replaces the expanded set
// with the query's auto-expand set.
func (s State) WithGlobalQuery(text string, tree hierarchy.Tree, cfg Config) State {
	out := s.clone()
	out.Query = s.Query.WithGlobal(text)
	return out.reexpand(tree, cfg)
}

// WithColumnQuery activates the per-column query.
func (s State) WithColumnQuery(field search.FieldPath, text string, tree hierarchy.Tree, cfg Config) State {
	out := s.clone()
	out.Query = s.Query.WithColumn(field, text)
	return out.reexpand(tree, cfg)
}

// ClearQuery deactivates both query channels and collapses everything.
func (s State) ClearQuery() State {
	out := s.clone()
	out.Query = s.Query.Reset()
	out.Expanded = selection.NewSet()
	return out
}

func (s State) reexpand(tree hierarchy.Tree, cfg Config) State {
	_, text, fields := s.Query.Active(cfg.fields())
	result := search.Evaluate(tree, text, fields)
	s.Expanded = selection.NewSet(result.ExpandedKeys(tree)...)
	return s
}

// WithSort changes the root ordering.
func (s State) WithSort(opts hierarchy.SortOptions) State {
	out := s.clone()
	out.Sort = opts
	return out
}

// ToggleExpand flips the expansion of a root row.
func (s State) ToggleExpand(key string) State {
	out := s.clone()
	if out.Expanded.Has(key) {
		delete(out.Expanded, key)
	} else {
		out.Expanded[key] = struct{}{}
	}
	return out
}

// Propose resolves a proposed selection against the current one and
// returns the state holding the resolved set.
func (s State) Propose(proposed selection.Set) (State, selection.Result) {
	result := selection.Apply(s.Selected, proposed)
	out := s.clone()
	out.Selected = result.Resolved
	return out, result
}

// Select adds keys to the current selection through the resolver.
func (s State) Select(keys ...string) (State, selection.Result) {
	proposed := s.Selected.Clone()
	for _, key := range keys {
		proposed[key] = struct{}{}
	}
	return s.Propose(proposed)
}

// ClearSelection empties the selection.
func (s State) ClearSelection() State {
	out := s.clone()
	out.Selected = selection.NewSet()
	return out
}
