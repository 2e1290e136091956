package store

import (
	"fmt"
	"strings"
)

type listQueryBuilder struct {
	filter ListFilter
	query  string
	args   []any
	where  []string
}

func buildListQuery(filter ListFilter) (string, []any) {
	builder := &listQueryBuilder{filter: filter}
	builder.buildSelect()
	builder.buildWhere()
	builder.buildOrder()
	builder.buildPagination()
	return builder.query, builder.args
}

func (b *listQueryBuilder) buildSelect() {
	b.query = "SELECT " + taskColumns + " FROM tasks"
}

func (b *listQueryBuilder) buildWhere() {
	b.appendProject()
	b.appendStatuses()
	b.appendTypes()
	b.appendAssignee()
	b.appendIDs()

	if len(b.where) == 0 {
		return
	}
	b.query += " WHERE " + strings.Join(b.where, " AND ")
}

// buildOrder keeps listings stable; presentation order is decided by the hierarchy builder.
func (b *listQueryBuilder) buildOrder() {
	b.query += " ORDER BY tasks.id ASC"
}

func (b *listQueryBuilder) buildPagination() {
	hasLimit := false
	if b.filter.Limit > 0 {
		b.query += " LIMIT ?"
		b.args = append(b.args, b.filter.Limit)
		hasLimit = true
	}
	if b.filter.Offset > 0 {
		if !hasLimit {
			b.query += " LIMIT -1"
		}
		b.query += " OFFSET ?"
		b.args = append(b.args, b.filter.Offset)
	}
}

func (b *listQueryBuilder) appendProject() {
	if b.filter.ProjectID == "" {
		return
	}
	b.where = append(b.where, "tasks.project_id = ?")
	b.args = append(b.args, b.filter.ProjectID)
}

func (b *listQueryBuilder) appendStatuses() {
	if len(b.filter.Statuses) == 0 {
		return
	}
	b.where = append(b.where, fmt.Sprintf("tasks.status IN (%s)", placeholders(len(b.filter.Statuses))))
	for _, status := range b.filter.Statuses {
		b.args = append(b.args, string(status))
	}
}

func (b *listQueryBuilder) appendTypes() {
	if len(b.filter.Types) == 0 {
		return
	}
	b.where = append(b.where, fmt.Sprintf("tasks.type IN (%s)", placeholders(len(b.filter.Types))))
	for _, taskType := range b.filter.Types {
		b.args = append(b.args, string(taskType))
	}
}

func (b *listQueryBuilder) appendAssignee() {
	if b.filter.AssigneeID == "" {
		return
	}
	b.where = append(b.where, "EXISTS (SELECT 1 FROM task_assignees ta WHERE ta.task_id = tasks.id AND ta.user_id = ?)")
	b.args = append(b.args, b.filter.AssigneeID)
}

func (b *listQueryBuilder) appendIDs() {
	if len(b.filter.IDs) == 0 {
		return
	}
	b.where = append(b.where, fmt.Sprintf("tasks.id IN (%s)", placeholders(len(b.filter.IDs))))
	b.args = append(b.args, stringArgs(b.filter.IDs)...)
}
