package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdesk/internal/models"
)

// ListFilter scopes a task listing.
type ListFilter struct {
	ProjectID  string
	Statuses   []models.TaskStatus
	Types      []models.TaskType
	AssigneeID string
	IDs        []string
	Limit      int
	Offset     int
}

const taskColumns = `tasks.id, tasks.code, tasks.name, tasks.type, tasks.parent_id, tasks.status, tasks.priority,
	tasks.task_group, tasks.due_date, tasks.project_id,
	tasks.completed_by, tasks.completed_at, tasks.first_verified_by, tasks.first_verified_at,
	tasks.second_verified_by, tasks.second_verified_at, tasks.created_at, tasks.updated_at`

// CreateTask inserts a task with its assignees and explicit subtask ids.
func (s *Store) CreateTask(ctx context.Context, task *models.Task) (err error) {
	if task == nil {
		return fmt.Errorf("task is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	projectID := ""
	if task.Project != nil {
		projectID = task.Project.ID
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (
			id, code, name, type, parent_id, status, priority, task_group, due_date, project_id,
			completed_by, completed_at, first_verified_by, first_verified_at,
			second_verified_by, second_verified_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		nullIfEmpty(task.Code),
		task.Name,
		string(task.Type),
		nullIfEmpty(task.ParentTaskID),
		string(task.Status),
		task.Priority,
		nullIfEmpty(task.Group),
		nullTime(task.DueDate),
		nullIfEmpty(projectID),
		nullIfEmpty(task.CompletedBy),
		nullTime(task.CompletedAt),
		nullIfEmpty(task.FirstVerifiedBy),
		nullTime(task.FirstVerifiedAt),
		nullIfEmpty(task.SecondVerifiedBy),
		nullTime(task.SecondVerifiedAt),
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if err = insertAssignees(ctx, tx, task.ID, task.Assignees); err != nil {
		return err
	}
	if err = insertSubtasks(ctx, tx, task.ID, task.SubTaskIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// GetTask returns a hydrated task by id, or nil if it does not exist.
func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	tasks, err := s.ListTasks(ctx, ListFilter{IDs: []string{id}})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

// ListTasks returns the tasks in scope with project, assignees and subtask ids attached.
func (s *Store) ListTasks(ctx context.Context, filter ListFilter) ([]models.Task, error) {
	query, args := buildListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	projectIDs := make([]string, 0)
	for rows.Next() {
		task, projectID, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if projectID != "" {
			task.Project = &models.ProjectRef{ID: projectID}
			projectIDs = append(projectIDs, projectID)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	if err := s.hydrateTasks(ctx, tasks, projectIDs); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTaskStatus moves a task from one status to another.
// It returns ErrStaleTransition when the task is no longer in the from status.
func (s *Store) UpdateTaskStatus(ctx context.Context, id string, from, to models.TaskStatus, at time.Time) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(to), formatTime(at), id, string(from))
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *Store) hydrateTasks(ctx context.Context, tasks []models.Task, projectIDs []string) error {
	ids := make([]string, len(tasks))
	index := make(map[string]int, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
		index[task.ID] = i
	}

	projects, err := s.projectRefs(ctx, uniqueStrings(projectIDs))
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].Project == nil {
			continue
		}
		if ref, ok := projects[tasks[i].Project.ID]; ok {
			tasks[i].Project = ref
		}
	}

	assignees, err := s.listAssigneesForTasks(ctx, ids)
	if err != nil {
		return err
	}
	for taskID, refs := range assignees {
		tasks[index[taskID]].Assignees = refs
	}

	subtasks, err := s.listSubtasksForStories(ctx, ids)
	if err != nil {
		return err
	}
	for storyID, subIDs := range subtasks {
		tasks[index[storyID]].SubTaskIDs = subIDs
	}
	return nil
}

func (s *Store) projectRefs(ctx context.Context, ids []string) (map[string]*models.ProjectRef, error) {
	result := make(map[string]*models.ProjectRef, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	args := stringArgs(ids)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, code, name, project_lead_id FROM projects WHERE id IN (%s)
	`, placeholders(len(ids))), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ref models.ProjectRef
		var lead sql.NullString
		if err := rows.Scan(&ref.ID, &ref.Code, &ref.Name, &lead); err != nil {
			return nil, err
		}
		ref.ProjectLeadID = lead.String
		result[ref.ID] = &ref
	}
	return result, rows.Err()
}

func (s *Store) listAssigneesForTasks(ctx context.Context, ids []string) (map[string][]models.UserRef, error) {
	result := make(map[string][]models.UserRef)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT ta.task_id, u.id, COALESCE(NULLIF(u.display_name, ''), u.username)
		FROM task_assignees ta
		JOIN users u ON u.id = ta.user_id
		WHERE ta.task_id IN (%s)
		ORDER BY ta.task_id, ta.rowid
	`, placeholders(len(ids))), stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var taskID string
		var ref models.UserRef
		if err := rows.Scan(&taskID, &ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		result[taskID] = append(result[taskID], ref)
	}
	return result, rows.Err()
}

func (s *Store) listSubtasksForStories(ctx context.Context, ids []string) (map[string][]string, error) {
	result := make(map[string][]string)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT story_id, subtask_id FROM story_subtasks
		WHERE story_id IN (%s)
		ORDER BY story_id, position
	`, placeholders(len(ids))), stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var storyID, subtaskID string
		if err := rows.Scan(&storyID, &subtaskID); err != nil {
			return nil, err
		}
		result[storyID] = append(result[storyID], subtaskID)
	}
	return result, rows.Err()
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*models.Task, string, error) {
	var task models.Task
	var taskType, status string
	var code, parentID, group, dueDate, projectID sql.NullString
	var completedBy, completedAt, firstBy, firstAt, secondBy, secondAt sql.NullString
	var createdAt, updatedAt string

	if err := scanner.Scan(
		&task.ID,
		&code,
		&task.Name,
		&taskType,
		&parentID,
		&status,
		&task.Priority,
		&group,
		&dueDate,
		&projectID,
		&completedBy,
		&completedAt,
		&firstBy,
		&firstAt,
		&secondBy,
		&secondAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, "", err
	}

	task.Type = models.TaskType(taskType)
	task.Status = models.TaskStatus(status)
	task.Code = code.String
	task.ParentTaskID = parentID.String
	task.Group = group.String
	task.CompletedBy = completedBy.String
	task.FirstVerifiedBy = firstBy.String
	task.SecondVerifiedBy = secondBy.String

	var err error
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, "", err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, "", err
	}
	for _, field := range []struct {
		raw sql.NullString
		dst **time.Time
	}{
		{dueDate, &task.DueDate},
		{completedAt, &task.CompletedAt},
		{firstAt, &task.FirstVerifiedAt},
		{secondAt, &task.SecondVerifiedAt},
	} {
		if *field.dst, err = parseNullTime(field.raw); err != nil {
			return nil, "", err
		}
	}

	return &task, projectID.String, nil
}

func insertAssignees(ctx context.Context, tx *sql.Tx, taskID string, assignees []models.UserRef) error {
	if len(assignees) == 0 {
		return nil
	}
	values := make([]string, len(assignees))
	args := make([]any, 0, len(assignees)*2)
	for i, assignee := range assignees {
		values[i] = "(?, ?)"
		args = append(args, taskID, assignee.ID)
	}
	_, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO task_assignees (task_id, user_id) VALUES "+strings.Join(values, ","), args...)
	return err
}

func insertSubtasks(ctx context.Context, tx *sql.Tx, storyID string, subtaskIDs []string) error {
	if len(subtaskIDs) == 0 {
		return nil
	}
	values := make([]string, len(subtaskIDs))
	args := make([]any, 0, len(subtaskIDs)*3)
	for i, subtaskID := range subtaskIDs {
		values[i] = "(?, ?, ?)"
		args = append(args, storyID, subtaskID, i)
	}
	_, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO story_subtasks (story_id, subtask_id, position) VALUES "+strings.Join(values, ","), args...)
	return err
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStaleTransition
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("?,", count), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, value := range values {
		args[i] = value
	}
	return args
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return formatTime(*value)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func parseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
