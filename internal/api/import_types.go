package api

import "time"

// ImportRequest provisions roles, users, projects and tasks in one call.
// Records are applied in that order so later records can reference earlier ones.
type ImportRequest struct {
	Roles    []RoleRequest          `json:"roles,omitempty"`
	Users    []UserCreateRequest    `json:"users,omitempty"`
	Projects []ProjectCreateRequest `json:"projects,omitempty"`
	Tasks    []TaskImportRecord     `json:"tasks,omitempty"`
	Dedupe   string                 `json:"dedupe,omitempty"`
	DryRun   bool                   `json:"dry_run,omitempty"`
}

// TaskImportRecord is a task with its recorded workflow history.
// Actor fields accept user ids or usernames.
type TaskImportRecord struct {
	TaskCreateRequest
	CompletedBy      string     `json:"completed_by,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	FirstVerifiedBy  string     `json:"first_verified_by,omitempty"`
	FirstVerifiedAt  *time.Time `json:"first_verified_at,omitempty"`
	SecondVerifiedBy string     `json:"second_verified_by,omitempty"`
	SecondVerifiedAt *time.Time `json:"second_verified_at,omitempty"`
}

// ImportResponse summarizes an import run.
type ImportResponse struct {
	DryRun          bool     `json:"dry_run"`
	RolesApplied    int      `json:"roles_applied"`
	UsersCreated    int      `json:"users_created"`
	ProjectsCreated int      `json:"projects_created"`
	Created         int      `json:"created"`
	Skipped         int      `json:"skipped"`
	Errors          int      `json:"errors"`
	TaskIDs         []string `json:"task_ids"`
	Messages        []string `json:"messages,omitempty"`
}
