package store

import (
	"context"
	"testing"
	"time"

	"taskdesk/internal/models"
)

func TestProjectLifecycle(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	seedWorkspace(t, st)

	other := models.Project{ID: "pj-0002", Code: " aud ", Name: "Audit", CreatedAt: time.Now().UTC()}
	if err := st.CreateProject(ctx, &other); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.GetProjectByCode(ctx, "AUD")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got == nil || got.ID != "pj-0002" || got.ProjectLeadID != "" {
		t.Fatalf("unexpected project: %+v", got)
	}

	byID, err := st.GetProject(ctx, "pj-0001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if byID == nil || byID.ProjectLeadID != "us-lead" {
		t.Fatalf("unexpected project: %+v", byID)
	}

	projects, err := st.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 2 || projects[0].Code != "AUD" || projects[1].Code != "FIN" {
		t.Fatalf("unexpected order: %+v", projects)
	}
}

func TestCreateProjectRejectsDuplicateCode(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	seedWorkspace(t, st)

	dup := models.Project{ID: "pj-0003", Code: "FIN", Name: "Dup", CreatedAt: time.Now()}
	if err := st.CreateProject(ctx, &dup); err == nil {
		t.Fatal("expected unique constraint error")
	}
	if err := st.CreateProject(ctx, &models.Project{ID: "pj-0004"}); err == nil {
		t.Fatal("expected error for blank code")
	}
}

func TestGetProjectMissing(t *testing.T) {
	st := testStore(t)
	got, err := st.GetProject(context.Background(), "pj-none")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
