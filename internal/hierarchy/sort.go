package hierarchy

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskdesk/internal/models"
)

// SortKey names the column roots are ordered by.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByCode     SortKey = "code"
	SortByStatus   SortKey = "status"
	SortByPriority SortKey = "priority"
	SortByDueDate  SortKey = "due"
)

var validSortKeys = map[SortKey]struct{}{
	SortByName:     {},
	SortByCode:     {},
	SortByStatus:   {},
	SortByPriority: {},
	SortByDueDate:  {},
}

// SortOptions controls root ordering. The zero value sorts by name ascending.
type SortOptions struct {
	Key  SortKey `json:"key"`
	Desc bool    `json:"desc"`
}

func ParseSortKey(raw string) (SortKey, error) {
	value := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return SortByName, nil
	}
	if _, ok := validSortKeys[value]; !ok {
		return "", fmt.Errorf("invalid sort key: %s", value)
	}
	return value, nil
}

func (o SortOptions) key() SortKey {
	if o.Key == "" {
		return SortByName
	}
	return o.Key
}

// comparer holds one collator per build; collators are not safe for concurrent use.
type comparer struct {
	collator *collate.Collator
}

func newComparer() *comparer {
	return &comparer{collator: collate.New(language.Und, collate.IgnoreCase)}
}

func (c *comparer) names(a, b string) int {
	return c.collator.CompareString(a, b)
}

// byName orders children: name ascending, then id.
func (c *comparer) byName(a, b models.Task) int {
	if cmp := c.names(a.Name, b.Name); cmp != 0 {
		return cmp
	}
	return strings.Compare(a.ID, b.ID)
}

// roots orders root nodes by the active sort key. Ties always break on id
// ascending regardless of direction so output stays deterministic.
func (c *comparer) roots(opts SortOptions) func(a, b *Node) int {
	return func(a, b *Node) int {
		cmp := c.rootKey(opts.key(), a.Task, b.Task)
		if cmp == 0 && opts.key() != SortByName {
			cmp = c.names(a.Task.Name, b.Task.Name)
		}
		if opts.Desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp
		}
		return strings.Compare(a.Task.ID, b.Task.ID)
	}
}

func (c *comparer) rootKey(key SortKey, a, b models.Task) int {
	switch key {
	case SortByCode:
		return c.names(a.Code, b.Code)
	case SortByStatus:
		return models.StatusRank(a.Status) - models.StatusRank(b.Status)
	case SortByPriority:
		return a.Priority - b.Priority
	case SortByDueDate:
		return compareDue(a.DueDate, b.DueDate)
	default:
		return c.names(a.Name, b.Name)
	}
}

// compareDue puts tasks without a due date last.
func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
