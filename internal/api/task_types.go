package api

import (
	"net/url"
	"strconv"
	"strings"

	"taskdesk/internal/guard"
)

// TaskCreateRequest defines the payload for creating a task.
// Assignees and Project accept either ids or human keys (usernames, project codes).
type TaskCreateRequest struct {
	ID           string   `json:"id,omitempty"`
	Code         string   `json:"tcode,omitempty"`
	Name         string   `json:"name"`
	Type         *string  `json:"task_type,omitempty"`
	ParentTaskID string   `json:"parent_task_id,omitempty"`
	SubTaskIDs   []string `json:"sub_task_ids,omitempty"`
	Status       *string  `json:"status,omitempty"`
	Priority     *int     `json:"priority,omitempty"`
	Group        string   `json:"group,omitempty"`
	DueDate      string   `json:"due_date,omitempty"`
	Project      string   `json:"project,omitempty"`
	Assignees    []string `json:"assignees,omitempty"`
}

// TaskUpdateRequest defines the payload for PATCH /v1/tasks/{id}.
type TaskUpdateRequest struct {
	Status *string `json:"status,omitempty"`
}

// TaskListQuery scopes GET /v1/tasks.
type TaskListQuery struct {
	Project  string
	Statuses []string
	Assignee string
	Limit    int
	Offset   int
}

// Values encodes the query for the request URL.
func (q TaskListQuery) Values() url.Values {
	values := url.Values{}
	if project := strings.TrimSpace(q.Project); project != "" {
		values.Set("project", project)
	}
	if len(q.Statuses) > 0 {
		values.Set("status", strings.Join(q.Statuses, ","))
	}
	if assignee := strings.TrimSpace(q.Assignee); assignee != "" {
		values.Set("assignee", assignee)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	return values
}

// TransitionRequest is the body of the bulk transition endpoints.
// Exactly one actor field is set, matching the endpoint. Second
// verification bodies must carry RequireFirstVerified.
type TransitionRequest struct {
	TaskIDs              []string `json:"task_ids"`
	CompletedBy          string   `json:"completed_by,omitempty"`
	FirstVerifiedBy      string   `json:"first_verified_by,omitempty"`
	SecondVerifiedBy     string   `json:"second_verified_by,omitempty"`
	RequireFirstVerified bool     `json:"require_first_verified,omitempty"`
}

// NewTransitionRequest builds the request body for one transition kind.
func NewTransitionRequest(kind guard.Transition, taskIDs []string, actorID string) TransitionRequest {
	req := TransitionRequest{TaskIDs: taskIDs}
	switch kind {
	case guard.Complete:
		req.CompletedBy = actorID
	case guard.FirstVerify:
		req.FirstVerifiedBy = actorID
	case guard.SecondVerify:
		req.SecondVerifiedBy = actorID
		req.RequireFirstVerified = true
	}
	return req
}

// Actor returns the actor field for kind.
func (r TransitionRequest) Actor(kind guard.Transition) string {
	switch kind {
	case guard.Complete:
		return r.CompletedBy
	case guard.FirstVerify:
		return r.FirstVerifiedBy
	case guard.SecondVerify:
		return r.SecondVerifiedBy
	default:
		return ""
	}
}

// TransitionPath returns the endpoint for a transition kind.
func TransitionPath(kind guard.Transition) string {
	return "/v1/tasks/" + string(kind)
}
