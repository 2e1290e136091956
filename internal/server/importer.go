package server

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"taskdesk/internal/api"
	"taskdesk/internal/models"
	"taskdesk/internal/store"
)

// Importer executes import requests in explicit phases.
type Importer struct {
	tasks     store.TaskStore
	projects  store.ProjectStore
	users     store.UserStore
	directory *DirectoryService
}

// NewImporter constructs an Importer.
func NewImporter(tasks store.TaskStore, projects store.ProjectStore, users store.UserStore) *Importer {
	return &Importer{
		tasks:     tasks,
		projects:  projects,
		users:     users,
		directory: NewDirectoryService(projects, users),
	}
}

type importRun struct {
	req             api.ImportRequest
	dedupe          string
	response        api.ImportResponse
	normalized      []importTask
	taskExistsCache map[string]bool
}

// importTask is a validated record whose references are still unresolved.
type importTask struct {
	task   models.Task
	record api.TaskImportRecord
}

// Import processes an import request
// (validate -> roles -> users -> projects -> tasks). It is best effort:
// records that fail after validation are counted and reported, not rolled back.
func (i *Importer) Import(ctx context.Context, req api.ImportRequest) (api.ImportResponse, error) {
	run := &importRun{
		req:             req,
		dedupe:          strings.TrimSpace(req.Dedupe),
		response:        api.ImportResponse{DryRun: req.DryRun, TaskIDs: []string{}},
		taskExistsCache: make(map[string]bool),
	}
	if run.dedupe == "" {
		run.dedupe = "skip"
	}
	if run.dedupe != "skip" && run.dedupe != "error" {
		return run.response, badRequest(fmt.Errorf("dedupe must be skip or error"))
	}

	if err := i.normalizeAndValidate(run); err != nil {
		return run.response, err
	}
	if req.DryRun {
		return run.response, i.planTasks(run)
	}

	if err := i.applyRoles(ctx, run); err != nil {
		return run.response, err
	}
	if err := i.applyUsers(ctx, run); err != nil {
		return run.response, err
	}
	if err := i.applyProjects(ctx, run); err != nil {
		return run.response, err
	}
	if err := i.applyTasks(ctx, run); err != nil {
		return run.response, err
	}
	return run.response, nil
}

func (i *Importer) normalizeAndValidate(run *importRun) error {
	seen := make(map[string]bool, len(run.req.Tasks))
	for _, raw := range run.req.Tasks {
		rec, err := normalizeImportRecord(raw)
		if err != nil {
			return err
		}
		if seen[rec.task.ID] {
			return badRequestCode(fmt.Errorf("duplicate id in import: %s", rec.task.ID), ErrCodeInvalidID)
		}
		seen[rec.task.ID] = true
		run.normalized = append(run.normalized, rec)
	}
	return nil
}

func normalizeImportRecord(raw api.TaskImportRecord) (importTask, error) {
	rec := importTask{record: raw}

	id := strings.TrimSpace(raw.ID)
	if !validateID(id) {
		return rec, badRequestCode(fmt.Errorf("invalid id: %q", raw.ID), ErrCodeInvalidID)
	}
	name, err := normalizeName(raw.Name, "name")
	if err != nil {
		return rec, err
	}

	taskType := models.TypeTask
	if raw.Type != nil {
		if taskType, err = normalizeType(*raw.Type); err != nil {
			return rec, err
		}
	}
	status := models.StatusOpen
	if raw.Status != nil {
		if status, err = normalizeStatus(*raw.Status); err != nil {
			return rec, err
		}
	}
	priority, err := normalizePriority(raw.Priority)
	if err != nil {
		return rec, err
	}
	dueDate, err := parseDueDate(raw.DueDate)
	if err != nil {
		return rec, err
	}

	parentID := strings.TrimSpace(raw.ParentTaskID)
	if parentID != "" && (taskType == models.TypeStory || !validateID(parentID)) {
		return rec, badRequestCode(fmt.Errorf("invalid parent_task_id for %s", id), ErrCodeInvalidParentID)
	}
	subTaskIDs, err := normalizeSubTaskIDs(taskType, raw.SubTaskIDs)
	if err != nil {
		return rec, err
	}

	completedBy := strings.TrimSpace(raw.CompletedBy)
	firstBy := strings.TrimSpace(raw.FirstVerifiedBy)
	secondBy := strings.TrimSpace(raw.SecondVerifiedBy)
	if (completedBy != "" || firstBy != "") && status != models.StatusDone {
		return rec, badRequestCode(fmt.Errorf("task %s has completion history but is not done", id), ErrCodeInvalidStatus)
	}
	if secondBy != "" && firstBy == "" {
		return rec, badRequestCode(fmt.Errorf("task %s is second verified without a first verification", id), ErrCodeInvalidArgument)
	}

	now := time.Now().UTC()
	rec.task = models.Task{
		ID:           id,
		Code:         strings.TrimSpace(raw.Code),
		Name:         name,
		Type:         taskType,
		ParentTaskID: parentID,
		SubTaskIDs:   subTaskIDs,
		Status:       status,
		Priority:     priority,
		Group:        strings.TrimSpace(raw.Group),
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return rec, nil
}

// planTasks reports what a non-dry run would do with the task records.
func (i *Importer) planTasks(run *importRun) error {
	for _, rec := range run.normalized {
		exists, err := i.taskExists(run, rec.task.ID)
		if err != nil {
			return storeFailure(err)
		}
		if exists {
			i.recordDuplicate(run, rec.task.ID)
			continue
		}
		run.response.Created++
		run.response.TaskIDs = append(run.response.TaskIDs, rec.task.ID)
	}
	return nil
}

func (i *Importer) applyRoles(ctx context.Context, run *importRun) error {
	for _, role := range run.req.Roles {
		if _, err := i.directory.UpsertRole(ctx, role); err != nil {
			return err
		}
		run.response.RolesApplied++
	}
	return nil
}

func (i *Importer) applyUsers(ctx context.Context, run *importRun) error {
	for _, req := range run.req.Users {
		existing, err := i.users.GetUserByUsername(ctx, req.Username)
		if err != nil {
			return storeFailure(err)
		}
		if existing != nil {
			run.response.Messages = append(run.response.Messages, fmt.Sprintf("user exists: %s", existing.Username))
			continue
		}
		if _, err := i.directory.CreateUser(ctx, req); err != nil {
			return err
		}
		run.response.UsersCreated++
	}
	return nil
}

func (i *Importer) applyProjects(ctx context.Context, run *importRun) error {
	for _, req := range run.req.Projects {
		existing, err := i.projects.GetProjectByCode(ctx, req.Code)
		if err != nil {
			return storeFailure(err)
		}
		if existing != nil {
			run.response.Messages = append(run.response.Messages, fmt.Sprintf("project exists: %s", existing.Code))
			continue
		}
		if _, err := i.directory.CreateProject(ctx, req); err != nil {
			return err
		}
		run.response.ProjectsCreated++
	}
	return nil
}

func (i *Importer) applyTasks(ctx context.Context, run *importRun) error {
	// Stories first.
	ordered := make([]importTask, len(run.normalized))
	copy(ordered, run.normalized)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].task.Type == models.TypeStory && ordered[b].task.Type != models.TypeStory
	})

	for _, rec := range ordered {
		exists, err := i.taskExists(run, rec.task.ID)
		if err != nil {
			return storeFailure(err)
		}
		if exists {
			i.recordDuplicate(run, rec.task.ID)
			continue
		}

		task, err := i.resolveTask(ctx, rec)
		if err != nil {
			if httpStatusFromError(err) >= 500 {
				return err
			}
			run.response.Errors++
			run.response.Messages = append(run.response.Messages, fmt.Sprintf("%s: %v", rec.task.ID, err))
			continue
		}

		if err := i.tasks.CreateTask(ctx, &task); err != nil {
			return makeAPIError(http.StatusInternalServerError, "", ErrCodeImportFailed, fmt.Errorf("import task %s: %w", task.ID, err))
		}
		run.response.Created++
		run.taskExistsCache[task.ID] = true
		run.response.TaskIDs = append(run.response.TaskIDs, task.ID)
	}
	return nil
}

// resolveTask binds project, assignee and actor references to stored records.
func (i *Importer) resolveTask(ctx context.Context, rec importTask) (models.Task, error) {
	task := rec.task

	project, err := i.directory.ResolveProject(ctx, rec.record.Project)
	if err != nil {
		return task, err
	}
	if project != nil {
		task.Project = project.Ref()
	}

	for _, ref := range rec.record.Assignees {
		user, err := i.directory.ResolveUser(ctx, ref)
		if err != nil {
			return task, err
		}
		if user != nil && !task.HasAssignee(user.ID) {
			task.Assignees = append(task.Assignees, models.UserRef{ID: user.ID, Name: user.Name()})
		}
	}

	stamp := func(ref string, at *time.Time) (string, *time.Time, error) {
		user, err := i.directory.ResolveUser(ctx, ref)
		if err != nil || user == nil {
			return "", nil, err
		}
		if at == nil {
			updated := task.UpdatedAt
			at = &updated
		}
		return user.ID, at, nil
	}
	if task.CompletedBy, task.CompletedAt, err = stamp(rec.record.CompletedBy, rec.record.CompletedAt); err != nil {
		return task, err
	}
	if task.FirstVerifiedBy, task.FirstVerifiedAt, err = stamp(rec.record.FirstVerifiedBy, rec.record.FirstVerifiedAt); err != nil {
		return task, err
	}
	if task.SecondVerifiedBy, task.SecondVerifiedAt, err = stamp(rec.record.SecondVerifiedBy, rec.record.SecondVerifiedAt); err != nil {
		return task, err
	}
	return task, nil
}

func (i *Importer) recordDuplicate(run *importRun, id string) {
	if run.dedupe == "error" {
		run.response.Errors++
		run.response.Messages = append(run.response.Messages, fmt.Sprintf("duplicate id: %s", id))
		return
	}
	run.response.Skipped++
	run.response.TaskIDs = append(run.response.TaskIDs, id)
}

func (i *Importer) taskExists(run *importRun, id string) (bool, error) {
	exists, ok := run.taskExistsCache[id]
	if ok {
		return exists, nil
	}

	exists, err := i.tasks.TaskExists(id)
	if err != nil {
		return false, err
	}
	run.taskExistsCache[id] = exists
	return exists, nil
}
