package hierarchy

import (
	"slices"
	"sort"

	"taskdesk/internal/models"
)

// NodeKind says how a record was placed in the tree.
type NodeKind string

const (
	KindStory      NodeKind = "story"
	KindStandalone NodeKind = "standalone"
	KindChild      NodeKind = "child"
)

// ChildKeySeparator joins a parent id and a child id into a child row key.
const ChildKeySeparator = "-"

// Node wraps a task with its placement and children.
type Node struct {
	Task     models.Task `json:"task"`
	Kind     NodeKind    `json:"kind"`
	Key      string      `json:"key"`
	ParentID string      `json:"parentId,omitempty"`
	Children []*Node     `json:"children,omitempty"`
}

// HasChildren reports whether the node renders an expand affordance.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// Tree is the result of one build.
type Tree struct {
	Roots []*Node `json:"roots"`
}

// ChildKey returns the composite row key of a child under parentID.
func ChildKey(parentID, childID string) string {
	return parentID + ChildKeySeparator + childID
}

// Build groups records into stories with children plus standalone tasks.
func Build(records []models.Task, opts SortOptions) Tree {
	byID := make(map[string]models.Task, len(records))
	for _, record := range records {
		if _, ok := byID[record.ID]; !ok {
			byID[record.ID] = record
		}
	}

	// Index parent -> children once instead of scanning per story.
	byParent := make(map[string][]string)
	stories := make([]models.Task, 0)
	for _, record := range records {
		switch record.Type {
		case models.TypeStory:
			stories = append(stories, record)
		case models.TypeTask:
			if record.ParentTaskID != "" {
				byParent[record.ParentTaskID] = append(byParent[record.ParentTaskID], record.ID)
			}
		}
	}
	sort.SliceStable(stories, func(i, j int) bool { return stories[i].ID < stories[j].ID })

	cmp := newComparer()
	claimed := make(map[string]bool, len(records))
	roots := make([]*Node, 0, len(records))

	for _, story := range stories {
		if claimed[story.ID] {
			continue
		}
		claimed[story.ID] = true

		childIDs := story.SubTaskIDs
		if len(childIDs) == 0 {
			childIDs = byParent[story.ID]
		}

		children := make([]models.Task, 0, len(childIDs))
		for _, childID := range childIDs {
			child, ok := byID[childID]
			if !ok || child.Type != models.TypeTask || claimed[childID] {
				continue
			}
			claimed[childID] = true
			children = append(children, child)
		}
		slices.SortStableFunc(children, cmp.byName)

		node := &Node{Task: story, Kind: KindStory, Key: story.ID}
		for _, child := range children {
			node.Children = append(node.Children, &Node{
				Task:     child,
				Kind:     KindChild,
				Key:      ChildKey(story.ID, child.ID),
				ParentID: story.ID,
			})
		}
		roots = append(roots, node)
	}

	// Everything left over is standalone: tasks without a parent, tasks whose
	// parent is missing, and tasks their story did not claim.
	for _, record := range records {
		if claimed[record.ID] {
			continue
		}
		claimed[record.ID] = true
		roots = append(roots, &Node{Task: record, Kind: KindStandalone, Key: record.ID})
	}

	slices.SortStableFunc(roots, cmp.roots(opts))
	return Tree{Roots: roots}
}

// Count returns the number of nodes, children included.
func (t Tree) Count() int {
	total := 0
	for _, root := range t.Roots {
		total += 1 + len(root.Children)
	}
	return total
}

// Standalone returns the root-level tasks that are not stories.
func (t Tree) Standalone() []*Node {
	out := make([]*Node, 0)
	for _, root := range t.Roots {
		if root.Kind == KindStandalone {
			out = append(out, root)
		}
	}
	return out
}

// Find returns the node with the given row key.
func (t Tree) Find(key string) (*Node, bool) {
	for _, root := range t.Roots {
		if root.Key == key {
			return root, true
		}
		for _, child := range root.Children {
			if child.Key == key {
				return child, true
			}
		}
	}
	return nil, false
}

// Walk visits every node in display order.
func (t Tree) Walk(fn func(node *Node, depth int)) {
	for _, root := range t.Roots {
		fn(root, 0)
		for _, child := range root.Children {
			fn(child, 1)
		}
	}
}
