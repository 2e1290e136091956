package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"taskdesk/internal/api"
	"taskdesk/internal/guard"
	"taskdesk/internal/models"
	"taskdesk/internal/store"
)

// racingTaskStore simulates another actor winning every conditional update.
type racingTaskStore struct {
	store.TaskStore
}

func (racingTaskStore) MarkComplete(ctx context.Context, id, actorID string, at time.Time) error {
	return store.ErrStaleTransition
}

func (racingTaskStore) UpdateTaskStatus(ctx context.Context, id string, from, to models.TaskStatus, at time.Time) error {
	return store.ErrStaleTransition
}

func newTestTaskService(t *testing.T, st *store.Store, tasks store.TaskStore) *TaskService {
	t.Helper()
	if tasks == nil {
		tasks = st
	}
	return NewTaskService(tasks, st, st, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func strPtr(value string) *string { return &value }

func TestTaskServiceCreate_StoryWithSubtasks(t *testing.T) {
	_, st := newTestServer(t)
	svc := newTestTaskService(t, st, nil)
	ctx := context.Background()

	story, err := svc.Create(ctx, api.TaskCreateRequest{
		ID:         "td-st01",
		Name:       "Close the quarter",
		Type:       strPtr("story"),
		SubTaskIDs: []string{"td-0001", "td-0002", "td-0001"},
	})
	if err != nil {
		t.Fatalf("create story: %v", err)
	}
	if len(story.SubTaskIDs) != 2 {
		t.Fatalf("expected deduplicated subtask ids, got %v", story.SubTaskIDs)
	}

	child, err := svc.Create(ctx, api.TaskCreateRequest{
		ID:           "td-0001",
		Name:         "Post accruals",
		ParentTaskID: "td-st01",
		Status:       strPtr("in_progress"),
		DueDate:      "2026-03-31",
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.ParentTaskID != "td-st01" || child.Status != models.StatusInProgress {
		t.Fatalf("unexpected child: %+v", child)
	}
	if child.DueDate == nil || child.DueDate.Format("2006-01-02") != "2026-03-31" {
		t.Fatalf("unexpected due date: %v", child.DueDate)
	}

	stored, err := st.GetTask(ctx, "td-st01")
	if err != nil || stored == nil {
		t.Fatalf("get story: %v", err)
	}
	if len(stored.SubTaskIDs) != 2 || stored.SubTaskIDs[0] != "td-0001" || stored.SubTaskIDs[1] != "td-0002" {
		t.Fatalf("unexpected stored subtasks: %v", stored.SubTaskIDs)
	}
}

func TestTaskServiceCreate_RelationErrors(t *testing.T) {
	_, st := newTestServer(t)
	svc := newTestTaskService(t, st, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, api.TaskCreateRequest{Name: "Orphan", ParentTaskID: "td-zzzz"})
	if httpStatusFromError(err) != http.StatusNotFound {
		t.Fatalf("expected 404 for missing parent, got %v", err)
	}

	_, err = svc.Create(ctx, api.TaskCreateRequest{Name: "Nested story", Type: strPtr("story"), ParentTaskID: "td-zzzz"})
	if errorNumericCode(httpStatusFromError(err), err) != ErrCodeInvalidParentID {
		t.Fatalf("expected invalid parent for story, got %v", err)
	}

	_, err = svc.Create(ctx, api.TaskCreateRequest{Name: "Leaf", SubTaskIDs: []string{"td-0001"}})
	if httpStatusFromError(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for subtasks on a task, got %v", err)
	}
}

func TestTaskServiceTransition_StaleUpdateIsItemError(t *testing.T) {
	_, st := newTestServer(t)
	seedUser(t, st, "us-ann1", "ann", "member", "")
	seedTask(t, st, models.Task{ID: "td-0001", Name: "Raced", Status: models.StatusInProgress})
	svc := newTestTaskService(t, st, racingTaskStore{TaskStore: st})

	result, err := svc.Transition(context.Background(), guard.Complete, []string{"td-0001"}, "us-ann1")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if len(result.Success) != 0 || len(result.Errors) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := result.Errors[0]; got.TaskID != "td-0001" || got.TaskName != "Raced" || got.Error != msgTaskChanged {
		t.Fatalf("unexpected item error: %+v", got)
	}
}

func TestTaskServiceUpdateStatus_StaleIsConflict(t *testing.T) {
	_, st := newTestServer(t)
	seedTask(t, st, models.Task{ID: "td-0001"})
	svc := newTestTaskService(t, st, racingTaskStore{TaskStore: st})

	_, err := svc.UpdateStatus(context.Background(), "td-0001", api.TaskUpdateRequest{Status: strPtr("in_progress")})
	if httpStatusFromError(err) != http.StatusConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestTaskServiceTransition_ProjectLeadMayComplete(t *testing.T) {
	_, st := newTestServer(t)
	if err := st.UpsertRole(context.Background(), models.Role{Name: "guest", Permissions: models.NewPermissionSet()}, time.Now().UTC()); err != nil {
		t.Fatalf("upsert role: %v", err)
	}
	seedUser(t, st, "us-lead", "lead", "guest", "")
	seedUser(t, st, "us-gst1", "guest", "guest", "")
	project := seedProject(t, st, "pj-fin1", "FIN", "us-lead")
	seedTask(t, st, models.Task{ID: "td-0001", Project: project.Ref(), Status: models.StatusInProgress})
	seedTask(t, st, models.Task{ID: "td-0002", Project: project.Ref(), Status: models.StatusInProgress})
	svc := newTestTaskService(t, st, nil)
	ctx := context.Background()

	result, err := svc.Transition(ctx, guard.Complete, []string{"td-0001"}, "guest")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Error != "You do not have permission to mark this task complete" {
		t.Fatalf("expected permission error, got %+v", result)
	}

	result, err = svc.Transition(ctx, guard.Complete, []string{"td-0001", "td-0002"}, "lead")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if len(result.Success) != 2 || len(result.Errors) != 0 {
		t.Fatalf("expected lead to complete both tasks, got %+v", result)
	}
}
