package models

import "time"

// ProjectRef is the project summary embedded in a task record.
type ProjectRef struct {
	ID            string `json:"id"`
	Code          string `json:"code,omitempty"`
	Name          string `json:"name"`
	ProjectLeadID string `json:"projectLeadId,omitempty"`
}

// UserRef is a lightweight reference to a user.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Task is one record of the flat task collection.
//
// SubTaskIDs is nil when the story carries no explicit subtask relation; an
// empty non-nil slice is treated the same way by the hierarchy builder.
// Verification identity and timestamp are always set together.
type Task struct {
	ID               string      `json:"id"`
	Code             string      `json:"tcode,omitempty"`
	Name             string      `json:"name"`
	Type             TaskType    `json:"taskType"`
	ParentTaskID     string      `json:"parentTaskId,omitempty"`
	SubTaskIDs       []string    `json:"subTaskIds,omitempty"`
	Status           TaskStatus  `json:"status"`
	Priority         int         `json:"priority"`
	Group            string      `json:"group,omitempty"`
	DueDate          *time.Time  `json:"dueDate,omitempty"`
	Assignees        []UserRef   `json:"assignees,omitempty"`
	Project          *ProjectRef `json:"project,omitempty"`
	CompletedBy      string      `json:"completedBy,omitempty"`
	CompletedAt      *time.Time  `json:"completedAt,omitempty"`
	FirstVerifiedBy  string      `json:"firstVerifiedBy,omitempty"`
	FirstVerifiedAt  *time.Time  `json:"firstVerifiedAt,omitempty"`
	SecondVerifiedBy string      `json:"secondVerifiedBy,omitempty"`
	SecondVerifiedAt *time.Time  `json:"secondVerifiedAt,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// IsFirstVerified reports whether the first verifier identity is recorded.
func (t Task) IsFirstVerified() bool {
	return t.FirstVerifiedBy != ""
}

// IsSecondVerified reports whether the second verifier identity is recorded.
func (t Task) IsSecondVerified() bool {
	return t.SecondVerifiedBy != ""
}

// ProjectLeadID returns the lead of the task's project, if the project is known.
func (t Task) ProjectLeadID() (string, bool) {
	if t.Project == nil || t.Project.ProjectLeadID == "" {
		return "", false
	}
	return t.Project.ProjectLeadID, true
}

// HasAssignee reports whether userID is among the task's assignees.
func (t Task) HasAssignee(userID string) bool {
	for _, assignee := range t.Assignees {
		if assignee.ID == userID {
			return true
		}
	}
	return false
}

// Ref returns the short reference used in bulk results.
func (t Task) Ref() TaskRef {
	return TaskRef{ID: t.ID, Name: t.Name}
}
