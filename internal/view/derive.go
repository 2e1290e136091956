package view

import (
	"taskdesk/internal/guard"
	"taskdesk/internal/hierarchy"
	"taskdesk/internal/models"
	"taskdesk/internal/search"
)

// Row is one rendered line of the task table.
type Row struct {
	Key         string             `json:"key"`
	Depth       int                `json:"depth"`
	Kind        hierarchy.NodeKind `json:"kind"`
	TypeLabel   string             `json:"typeLabel"`
	Task        models.Task        `json:"task"`
	Match       search.Match       `json:"match"`
	HasChildren bool               `json:"hasChildren"`
	Expanded    bool               `json:"expanded"`
	Selected    bool               `json:"selected"`
	Actions     []guard.Display    `json:"actions"`
}

// Snapshot is the fully derived view of one state over one record set.
type Snapshot struct {
	Tree    hierarchy.Tree `json:"tree"`
	Search  search.Result  `json:"search"`
	Channel search.Channel `json:"channel,omitempty"`
	Rows    []Row          `json:"rows"`
}

// Derive rebuilds the hierarchy and search result from records and renders
// the visible rows. Nothing from a previous derivation is reused.
func Derive(records []models.Task, state State, actor models.User, cfg Config) Snapshot {
	tree := hierarchy.Build(records, state.Sort)
	channel, text, fields := state.Query.Active(cfg.fields())
	result := search.Evaluate(tree, text, fields)

	transitions := cfg.Transitions
	if transitions == nil {
		transitions = guard.Transitions
	}

	snap := Snapshot{Tree: tree, Search: result, Channel: channel, Rows: []Row{}}
	for _, root := range tree.Roots {
		if !result.Visible[root.Key] {
			continue
		}
		expanded := state.Expanded.Has(root.Key)
		snap.Rows = append(snap.Rows, newRow(root, 0, result, state, actor, transitions, expanded))
		if !expanded {
			continue
		}
		for _, child := range root.Children {
			snap.Rows = append(snap.Rows, newRow(child, 1, result, state, actor, transitions, false))
		}
	}
	return snap
}

func newRow(node *hierarchy.Node, depth int, result search.Result, state State, actor models.User, transitions []guard.Transition, expanded bool) Row {
	label := models.TypeLabel(node.Task.Type)
	if node.Kind == hierarchy.KindStandalone {
		label = "Task"
	}
	return Row{
		Key:         node.Key,
		Depth:       depth,
		Kind:        node.Kind,
		TypeLabel:   label,
		Task:        node.Task,
		Match:       result.Matches[node.Key],
		HasChildren: node.HasChildren(),
		Expanded:    expanded,
		Selected:    state.Selected.Has(node.Key),
		Actions:     guard.DescribeAll(transitions, node.Task, actor),
	}
}

// SelectedTasks maps the selected row keys to their tasks, once per task id,
// in tree order. Unknown keys are returned separately.
func SelectedTasks(tree hierarchy.Tree, state State) ([]models.Task, []string) {
	tasks := make([]models.Task, 0, state.Selected.Len())
	seen := make(map[string]bool)
	found := make(map[string]bool)
	tree.Walk(func(node *hierarchy.Node, _ int) {
		if !state.Selected.Has(node.Key) {
			return
		}
		found[node.Key] = true
		if seen[node.Task.ID] {
			return
		}
		seen[node.Task.ID] = true
		tasks = append(tasks, node.Task)
	})

	var unknown []string
	for _, key := range state.Selected.Keys() {
		if !found[key] {
			unknown = append(unknown, key)
		}
	}
	return tasks, unknown
}
