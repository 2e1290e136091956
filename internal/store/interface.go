package store

import (
	"context"
	"time"

	"taskdesk/internal/models"
)

// TaskStore abstracts task storage backends.
type TaskStore interface {
	TaskExists(id string) (bool, error)
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter ListFilter) ([]models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, from, to models.TaskStatus, at time.Time) error
	MarkComplete(ctx context.Context, id, actorID string, at time.Time) error
	MarkFirstVerified(ctx context.Context, id, actorID string, at time.Time) error
	MarkSecondVerified(ctx context.Context, id, actorID string, at time.Time) error
}

// ProjectStore abstracts project storage.
type ProjectStore interface {
	ProjectExists(id string) (bool, error)
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjectByCode(ctx context.Context, code string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// UserStore abstracts users and their roles.
type UserStore interface {
	UserExists(id string) (bool, error)
	UpsertRole(ctx context.Context, role models.Role, at time.Time) error
	GetRole(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	CreateUser(ctx context.Context, user *UserRecord) error
	GetUserByID(ctx context.Context, id string) (*UserRecord, error)
	GetUserByUsername(ctx context.Context, username string) (*UserRecord, error)
	ListUsers(ctx context.Context) ([]UserRecord, error)
	CountEnabledUsers(ctx context.Context) (int, error)
}

var (
	_ TaskStore    = (*Store)(nil)
	_ ProjectStore = (*Store)(nil)
	_ UserStore    = (*Store)(nil)
)
