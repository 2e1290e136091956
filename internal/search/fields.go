package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskdesk/internal/models"
)

// FieldPath is a dotted path into a task's searchable fields, e.g. "project.name".
type FieldPath string

// Common field paths.
const (
	FieldName        FieldPath = "name"
	FieldCode        FieldPath = "tcode"
	FieldTypeLabel   FieldPath = "typeLabel"
	FieldStatus      FieldPath = "status"
	FieldGroup       FieldPath = "group"
	FieldProjectName FieldPath = "project.name"
	FieldProjectCode FieldPath = "project.code"
	FieldAssignee    FieldPath = "assignees.name"
)

// DefaultFields is the global search field list of the task table.
var DefaultFields = []FieldPath{FieldName, FieldCode, FieldProjectName, FieldTypeLabel}

// ParseFields converts raw path strings, dropping blanks.
func ParseFields(raw []string) []FieldPath {
	out := make([]FieldPath, 0, len(raw))
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, FieldPath(value))
	}
	return out
}

// record exposes a task as nested maps for dotted lookup.
func record(task models.Task) map[string]any {
	fields := map[string]any{
		"id":        task.ID,
		"tcode":     task.Code,
		"name":      task.Name,
		"taskType":  string(task.Type),
		"typeLabel": models.TypeLabel(task.Type),
		"status":    string(task.Status),
		"priority":  task.Priority,
		"group":     task.Group,
	}
	if task.DueDate != nil {
		fields["dueDate"] = task.DueDate.UTC().Format(time.DateOnly)
	}
	if task.Project != nil {
		fields["project"] = map[string]any{
			"id":            task.Project.ID,
			"code":          task.Project.Code,
			"name":          task.Project.Name,
			"projectLeadId": task.Project.ProjectLeadID,
		}
	}
	if len(task.Assignees) > 0 {
		assignees := make([]any, 0, len(task.Assignees))
		for _, assignee := range task.Assignees {
			assignees = append(assignees, map[string]any{"id": assignee.ID, "name": assignee.Name})
		}
		fields["assignees"] = assignees
	}
	return fields
}

// Resolve looks up path in the task by sequential key lookup. Lists fan out
// over their elements. A missing intermediate yields no values.
func Resolve(task models.Task, path FieldPath) []string {
	keys := strings.Split(string(path), ".")
	return resolve(record(task), keys)
}

func resolve(value any, keys []string) []string {
	if value == nil {
		return nil
	}
	if list, ok := value.([]any); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, resolve(item, keys)...)
		}
		return out
	}
	if len(keys) == 0 {
		text, ok := stringify(value)
		if !ok {
			return nil
		}
		return []string{text}
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	next, ok := fields[keys[0]]
	if !ok {
		return nil
	}
	return resolve(next, keys[1:])
}

func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case int:
		return strconv.Itoa(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
