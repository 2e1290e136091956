package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskdesk/internal/api"
	"taskdesk/internal/guard"
	"taskdesk/internal/models"
	"taskdesk/internal/store"
)

const (
	msgTaskNotFound   = "Task not found"
	msgTaskChanged    = "Task changed since it was loaded, refresh and retry"
	msgTransitionFail = "Could not update task"
)

// TaskService centralizes task validation, defaults and transitions.
type TaskService struct {
	store     store.TaskStore
	directory *DirectoryService
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks store.TaskStore, projects store.ProjectStore, users store.UserStore, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		store:     tasks,
		directory: NewDirectoryService(projects, users),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create creates a task from a request. New tasks start open or in progress;
// completion and verification only happen through transitions.
func (s *TaskService) Create(ctx context.Context, req api.TaskCreateRequest) (models.Task, error) {
	name, err := normalizeName(req.Name, "name")
	if err != nil {
		return models.Task{}, err
	}

	taskType := models.TypeTask
	if req.Type != nil {
		if taskType, err = normalizeType(*req.Type); err != nil {
			return models.Task{}, err
		}
	}

	status := models.StatusOpen
	if req.Status != nil {
		if status, err = normalizeStatus(*req.Status); err != nil {
			return models.Task{}, err
		}
		if status == models.StatusDone {
			return models.Task{}, badRequestCode(fmt.Errorf("tasks are completed through the complete action"), ErrCodeInvalidStatus)
		}
	}

	priority, err := normalizePriority(req.Priority)
	if err != nil {
		return models.Task{}, err
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return models.Task{}, err
	}

	id, err := s.taskID(req.ID)
	if err != nil {
		return models.Task{}, err
	}

	parentID, err := s.parentID(ctx, taskType, req.ParentTaskID)
	if err != nil {
		return models.Task{}, err
	}

	subTaskIDs, err := normalizeSubTaskIDs(taskType, req.SubTaskIDs)
	if err != nil {
		return models.Task{}, err
	}

	now := s.now()
	task := models.Task{
		ID:           id,
		Code:         strings.TrimSpace(req.Code),
		Name:         name,
		Type:         taskType,
		ParentTaskID: parentID,
		SubTaskIDs:   subTaskIDs,
		Status:       status,
		Priority:     priority,
		Group:        strings.TrimSpace(req.Group),
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	project, err := s.directory.ResolveProject(ctx, req.Project)
	if err != nil {
		return models.Task{}, err
	}
	if project != nil {
		task.Project = project.Ref()
	}

	for _, ref := range req.Assignees {
		user, err := s.directory.ResolveUser(ctx, ref)
		if err != nil {
			return models.Task{}, err
		}
		if user != nil && !task.HasAssignee(user.ID) {
			task.Assignees = append(task.Assignees, models.UserRef{ID: user.ID, Name: user.Name()})
		}
	}

	if err := s.store.CreateTask(ctx, &task); err != nil {
		if isUniqueConstraint(err, "tasks.id") {
			return models.Task{}, conflictCode(fmt.Errorf("id already exists"), ErrCodeTaskIDExists)
		}
		return models.Task{}, storeFailure(err)
	}
	return task, nil
}

func (s *TaskService) taskID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return store.GenerateTaskID(s.store.TaskExists)
	}
	if !validateID(id) {
		return "", badRequestCode(fmt.Errorf("invalid id"), ErrCodeInvalidID)
	}
	exists, err := s.store.TaskExists(id)
	if err != nil {
		return "", storeFailure(err)
	}
	if exists {
		return "", conflictCode(fmt.Errorf("id already exists"), ErrCodeTaskIDExists)
	}
	return id, nil
}

// parentID checks that a task's parent is an existing story.
func (s *TaskService) parentID(ctx context.Context, taskType models.TaskType, raw string) (string, error) {
	parentID := strings.TrimSpace(raw)
	if parentID == "" {
		return "", nil
	}
	if taskType == models.TypeStory {
		return "", badRequestCode(fmt.Errorf("stories cannot have a parent"), ErrCodeInvalidParentID)
	}
	if !validateID(parentID) {
		return "", badRequestCode(fmt.Errorf("invalid parent_task_id"), ErrCodeInvalidParentID)
	}
	parent, err := s.store.GetTask(ctx, parentID)
	if err != nil {
		return "", storeFailure(err)
	}
	if parent == nil {
		return "", notFoundCode(fmt.Errorf("parent task not found: %s", parentID), ErrCodeTaskNotFound)
	}
	if parent.Type != models.TypeStory {
		return "", badRequestCode(fmt.Errorf("parent must be a story"), ErrCodeInvalidParentID)
	}
	return parentID, nil
}

func normalizeSubTaskIDs(taskType models.TaskType, raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if taskType != models.TypeStory {
		return nil, badRequestCode(fmt.Errorf("only stories list subtasks"), ErrCodeInvalidArgument)
	}
	seen := make(map[string]struct{}, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if !validateID(id) {
			return nil, badRequestCode(fmt.Errorf("invalid sub_task_ids entry: %s", id), ErrCodeInvalidID)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListQuery scopes a task listing with human-friendly references.
type ListQuery struct {
	Project  string
	Statuses []string
	Assignee string
	Limit    int
	Offset   int
}

// List returns the tasks in scope.
func (s *TaskService) List(ctx context.Context, query ListQuery) ([]models.Task, error) {
	filter := store.ListFilter{Limit: query.Limit, Offset: query.Offset}

	for _, raw := range query.Statuses {
		status, err := normalizeStatus(raw)
		if err != nil {
			return nil, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	project, err := s.directory.ResolveProject(ctx, query.Project)
	if err != nil {
		return nil, err
	}
	if project != nil {
		filter.ProjectID = project.ID
	}

	assignee, err := s.directory.ResolveUser(ctx, query.Assignee)
	if err != nil {
		return nil, err
	}
	if assignee != nil {
		filter.AssigneeID = assignee.ID
	}

	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, storeFailure(err)
	}
	return tasks, nil
}

// UpdateStatus moves a task forward. Only open to in progress is allowed here;
// done is reached through the complete transition.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, req api.TaskUpdateRequest) (models.Task, error) {
	if req.Status == nil {
		return models.Task{}, badRequestCode(fmt.Errorf("status is required"), ErrCodeMissingRequired)
	}
	target, err := normalizeStatus(*req.Status)
	if err != nil {
		return models.Task{}, err
	}

	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, storeFailure(err)
	}
	if task == nil {
		return models.Task{}, notFoundCode(fmt.Errorf("task not found"), ErrCodeTaskNotFound)
	}
	if target == task.Status {
		return *task, nil
	}
	if !models.IsForwardStatus(task.Status, target) {
		return models.Task{}, conflictCode(fmt.Errorf("status cannot move from %s back to %s", task.Status, target), ErrCodeStatusBackward)
	}
	if target == models.StatusDone {
		return models.Task{}, badRequestCode(fmt.Errorf("tasks are completed through the complete action"), ErrCodeInvalidStatus)
	}

	now := s.now()
	if err := s.store.UpdateTaskStatus(ctx, id, task.Status, target, now); err != nil {
		if errors.Is(err, store.ErrStaleTransition) {
			return models.Task{}, conflictCode(errors.New(msgTaskChanged), ErrCodeConflict)
		}
		return models.Task{}, storeFailure(err)
	}
	task.Status = target
	task.UpdatedAt = now
	return *task, nil
}

// Transition applies kind to every id on behalf of actorID. Each task is
// checked and updated on its own; one failure never rolls back another.
func (s *TaskService) Transition(ctx context.Context, kind guard.Transition, taskIDs []string, actorID string) (models.BulkResult, error) {
	result := models.BulkResult{Success: []models.TaskRef{}, Errors: []models.ItemError{}}

	if err := requireIDs(taskIDs); err != nil {
		return result, err
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return result, badRequestCode(fmt.Errorf("%s is required", actorField(kind)), ErrCodeMissingRequired)
	}
	actor, err := s.directory.ResolveUser(ctx, actorID)
	if err != nil {
		return result, err
	}

	seen := make(map[string]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		ref, itemErr := s.transitionOne(ctx, kind, id, actor.User)
		if itemErr != "" {
			result.Errors = append(result.Errors, models.ItemError{TaskID: ref.ID, TaskName: ref.Name, Error: itemErr})
			continue
		}
		result.Success = append(result.Success, ref)
	}

	s.logger.Info("transition applied",
		"transition", kind,
		"actor", actor.ID,
		"requested", len(seen),
		"succeeded", len(result.Success),
		"failed", len(result.Errors),
	)
	return result, nil
}

func (s *TaskService) transitionOne(ctx context.Context, kind guard.Transition, id string, actor models.User) (models.TaskRef, string) {
	ref := models.TaskRef{ID: id}
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		s.logger.Error("load task for transition", "transition", kind, "task_id", id, "error", err)
		return ref, msgTransitionFail
	}
	if task == nil {
		return ref, msgTaskNotFound
	}
	ref = task.Ref()

	if err := guard.Check(kind, *task, actor); err != nil {
		return ref, err.Error()
	}

	now := s.now()
	switch kind {
	case guard.Complete:
		err = s.store.MarkComplete(ctx, id, actor.ID, now)
	case guard.FirstVerify:
		err = s.store.MarkFirstVerified(ctx, id, actor.ID, now)
	case guard.SecondVerify:
		err = s.store.MarkSecondVerified(ctx, id, actor.ID, now)
	default:
		return ref, fmt.Sprintf("unknown transition: %s", kind)
	}
	if errors.Is(err, store.ErrStaleTransition) {
		return ref, msgTaskChanged
	}
	if err != nil {
		s.logger.Error("apply transition", "transition", kind, "task_id", id, "error", err)
		return ref, msgTransitionFail
	}
	return ref, ""
}

func actorField(kind guard.Transition) string {
	switch kind {
	case guard.FirstVerify:
		return "first_verified_by"
	case guard.SecondVerify:
		return "second_verified_by"
	default:
		return "completed_by"
	}
}
