package models

import (
	"fmt"
	"strings"
)

// TaskStatus defines the lifecycle states of a task.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "open"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// TaskType separates top-level stories from plain tasks.
type TaskType string

const (
	TypeStory TaskType = "story"
	TypeTask  TaskType = "task"
)

const (
	PriorityMin     = 0
	PriorityMax     = 4
	DefaultPriority = 2
)

var validTaskStatuses = map[TaskStatus]struct{}{
	StatusOpen:       {},
	StatusInProgress: {},
	StatusDone:       {},
}

var validTaskTypes = map[TaskType]struct{}{
	TypeStory: {},
	TypeTask:  {},
}

// statusRank orders statuses along the one-way lifecycle.
var statusRank = map[TaskStatus]int{
	StatusOpen:       0,
	StatusInProgress: 1,
	StatusDone:       2,
}

func IsValidTaskStatus(status TaskStatus) bool {
	_, ok := validTaskStatuses[status]
	return ok
}

func IsValidTaskType(taskType TaskType) bool {
	_, ok := validTaskTypes[taskType]
	return ok
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	value := TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidTaskStatus(value) {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return value, nil
}

func ParseTaskType(raw string) (TaskType, error) {
	value := TaskType(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("type is required")
	}
	if !IsValidTaskType(value) {
		return "", fmt.Errorf("invalid type: %s", value)
	}
	return value, nil
}

// StatusRank returns the lifecycle position of a status, or -1 if unknown.
func StatusRank(status TaskStatus) int {
	rank, ok := statusRank[status]
	if !ok {
		return -1
	}
	return rank
}

// IsForwardStatus reports whether moving from one status to another advances the lifecycle.
func IsForwardStatus(from, to TaskStatus) bool {
	fromRank, toRank := StatusRank(from), StatusRank(to)
	return fromRank >= 0 && toRank > fromRank
}

// TypeLabel is the user-facing name of a task type.
func TypeLabel(taskType TaskType) string {
	switch taskType {
	case TypeStory:
		return "Task"
	case TypeTask:
		return "Subtask"
	default:
		return string(taskType)
	}
}

func IsValidPriority(value int) bool {
	return value >= PriorityMin && value <= PriorityMax
}
