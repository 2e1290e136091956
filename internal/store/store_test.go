package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"taskdesk/internal/models"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// seedWorkspace creates one project led by "lead" plus two users.
func seedWorkspace(t *testing.T, st *Store) models.Project {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, user := range []*UserRecord{
		{User: models.User{ID: "us-lead", Username: "Lead", DisplayName: "Lena Lead", Role: models.Role{Name: "member"}}, PasswordHash: "hash", CreatedAt: now, UpdatedAt: now},
		{User: models.User{ID: "us-ver1", Username: "ver", Role: models.Role{Name: "verifier"}}, CreatedAt: now, UpdatedAt: now},
	} {
		if err := st.CreateUser(ctx, user); err != nil {
			t.Fatalf("create user %s: %v", user.ID, err)
		}
	}

	project := models.Project{ID: "pj-0001", Code: "fin", Name: "Finance", ProjectLeadID: "us-lead", CreatedAt: now}
	if err := st.CreateProject(ctx, &project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

func newTask(id, name string, taskType models.TaskType, status models.TaskStatus) *models.Task {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Task{
		ID:        id,
		Name:      name,
		Type:      taskType,
		Status:    status,
		Priority:  models.DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGetTask(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	project := seedWorkspace(t, st)

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	story := newTask("td-st01", "Audit Q1", models.TypeStory, models.StatusOpen)
	story.Code = "FIN-1"
	story.Group = "audit"
	story.DueDate = &due
	story.Project = project.Ref()
	story.Assignees = []models.UserRef{{ID: "us-lead"}, {ID: "us-ver1"}}
	story.SubTaskIDs = []string{"td-ch02", "td-ch01"}

	if err := st.CreateTask(ctx, story); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.GetTask(ctx, "td-st01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected task, got nil")
	}
	if got.Name != "Audit Q1" || got.Code != "FIN-1" || got.Group != "audit" {
		t.Fatalf("unexpected scalar fields: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("expected due date %v, got %v", due, got.DueDate)
	}
	if got.Project == nil || got.Project.Code != "FIN" || got.Project.ProjectLeadID != "us-lead" {
		t.Fatalf("expected hydrated project, got %+v", got.Project)
	}
	if len(got.Assignees) != 2 || got.Assignees[0].Name != "Lena Lead" || got.Assignees[1].Name != "ver" {
		t.Fatalf("unexpected assignees: %+v", got.Assignees)
	}
	if len(got.SubTaskIDs) != 2 || got.SubTaskIDs[0] != "td-ch02" {
		t.Fatalf("expected subtask order preserved, got %v", got.SubTaskIDs)
	}
}

func TestGetTaskMissing(t *testing.T) {
	st := testStore(t)
	got, err := st.GetTask(context.Background(), "td-none")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestListTasksFilters(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	project := seedWorkspace(t, st)

	a := newTask("td-aaaa", "A", models.TypeStory, models.StatusOpen)
	a.Project = project.Ref()
	b := newTask("td-bbbb", "B", models.TypeTask, models.StatusInProgress)
	b.Project = project.Ref()
	b.Assignees = []models.UserRef{{ID: "us-ver1"}}
	c := newTask("td-cccc", "C", models.TypeTask, models.StatusDone)
	for _, task := range []*models.Task{a, b, c} {
		if err := st.CreateTask(ctx, task); err != nil {
			t.Fatalf("create %s: %v", task.ID, err)
		}
	}

	cases := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all", ListFilter{}, []string{"td-aaaa", "td-bbbb", "td-cccc"}},
		{"project", ListFilter{ProjectID: project.ID}, []string{"td-aaaa", "td-bbbb"}},
		{"statuses", ListFilter{Statuses: []models.TaskStatus{models.StatusDone, models.StatusOpen}}, []string{"td-aaaa", "td-cccc"}},
		{"types", ListFilter{Types: []models.TaskType{models.TypeTask}}, []string{"td-bbbb", "td-cccc"}},
		{"assignee", ListFilter{AssigneeID: "us-ver1"}, []string{"td-bbbb"}},
		{"limit offset", ListFilter{Limit: 1, Offset: 1}, []string{"td-bbbb"}},
		{"offset only", ListFilter{Offset: 2}, []string{"td-cccc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks, err := st.ListTasks(ctx, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(tasks) != len(tc.want) {
				t.Fatalf("expected %v, got %d tasks", tc.want, len(tasks))
			}
			for i, task := range tasks {
				if task.ID != tc.want[i] {
					t.Fatalf("expected %v, got %s at %d", tc.want, task.ID, i)
				}
			}
		})
	}
}

func TestUpdateTaskStatusIsConditional(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if err := st.CreateTask(ctx, newTask("td-aaaa", "A", models.TypeTask, models.StatusOpen)); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()
	if err := st.UpdateTaskStatus(ctx, "td-aaaa", models.StatusOpen, models.StatusInProgress, now); err != nil {
		t.Fatalf("update: %v", err)
	}
	err := st.UpdateTaskStatus(ctx, "td-aaaa", models.StatusOpen, models.StatusInProgress, now)
	if !errors.Is(err, ErrStaleTransition) {
		t.Fatalf("expected ErrStaleTransition, got %v", err)
	}
}

func TestVerificationTransitions(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	seedWorkspace(t, st)
	if err := st.CreateTask(ctx, newTask("td-aaaa", "A", models.TypeTask, models.StatusInProgress)); err != nil {
		t.Fatalf("create: %v", err)
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := st.MarkSecondVerified(ctx, "td-aaaa", "us-ver1", at); !errors.Is(err, ErrStaleTransition) {
		t.Fatalf("second verify before completion: expected stale, got %v", err)
	}
	if err := st.MarkComplete(ctx, "td-aaaa", "us-lead", at); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := st.MarkComplete(ctx, "td-aaaa", "us-lead", at); !errors.Is(err, ErrStaleTransition) {
		t.Fatalf("second complete: expected stale, got %v", err)
	}
	if err := st.MarkSecondVerified(ctx, "td-aaaa", "us-ver1", at); !errors.Is(err, ErrStaleTransition) {
		t.Fatalf("second verify before first: expected stale, got %v", err)
	}
	if err := st.MarkFirstVerified(ctx, "td-aaaa", "us-ver1", at); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if err := st.MarkFirstVerified(ctx, "td-aaaa", "us-ver1", at); !errors.Is(err, ErrStaleTransition) {
		t.Fatalf("repeat first verify: expected stale, got %v", err)
	}
	if err := st.MarkSecondVerified(ctx, "td-aaaa", "us-lead", at); err != nil {
		t.Fatalf("second verify: %v", err)
	}

	got, err := st.GetTask(ctx, "td-aaaa")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusDone || got.CompletedBy != "us-lead" {
		t.Fatalf("unexpected completion state: %+v", got)
	}
	if !got.IsFirstVerified() || got.FirstVerifiedAt == nil || !got.FirstVerifiedAt.Equal(at) {
		t.Fatalf("expected first verification at %v, got %+v", at, got.FirstVerifiedAt)
	}
	if !got.IsSecondVerified() || got.SecondVerifiedBy != "us-lead" {
		t.Fatalf("expected second verification, got %q", got.SecondVerifiedBy)
	}
}

func TestTransitionRequiresActor(t *testing.T) {
	st := testStore(t)
	if err := st.MarkComplete(context.Background(), "td-aaaa", "", time.Now()); err == nil {
		t.Fatal("expected error for missing actor")
	}
}

func TestRowExists(t *testing.T) {
	st := testStore(t)
	seedWorkspace(t, st)

	if ok, err := st.ProjectExists("pj-0001"); err != nil || !ok {
		t.Fatalf("expected project to exist, got %v %v", ok, err)
	}
	if ok, err := st.UserExists("us-none"); err != nil || ok {
		t.Fatalf("expected user to be missing, got %v %v", ok, err)
	}
	if ok, err := st.TaskExists("td-none"); err != nil || ok {
		t.Fatalf("expected task to be missing, got %v %v", ok, err)
	}
}

func TestStoreInfo(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	seedWorkspace(t, st)
	for _, task := range []*models.Task{
		newTask("td-aaaa", "A", models.TypeTask, models.StatusOpen),
		newTask("td-bbbb", "B", models.TypeTask, models.StatusOpen),
		newTask("td-cccc", "C", models.TypeTask, models.StatusDone),
	} {
		if err := st.CreateTask(ctx, task); err != nil {
			t.Fatalf("create %s: %v", task.ID, err)
		}
	}

	info, err := st.StoreInfo(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.TotalTasks != 3 || info.TaskCounts["open"] != 2 || info.TaskCounts["done"] != 1 {
		t.Fatalf("unexpected counts: %+v", info)
	}
	if info.ProjectCount != 1 || info.SchemaVersion != latestVersion() {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestOpenAppliesConnectionPragmas(t *testing.T) {
	st := testStore(t)

	var foreignKeys int
	if err := st.db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("read foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Fatalf("expected foreign keys on, got %d", foreignKeys)
	}

	var journal string
	if err := st.db.QueryRow("PRAGMA journal_mode").Scan(&journal); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if journal != "wal" {
		t.Fatalf("expected wal journal, got %q", journal)
	}

	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
