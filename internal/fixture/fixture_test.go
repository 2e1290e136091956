package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const quarterClose = `
dedupe: error
roles:
  - name: verifier
    permissions: [first-verify-task, second-verify-task]
users:
  - username: ann
    role: member
  - username: vera
    display_name: Vera Verifier
    role: verifier
projects:
  - code: FIN
    name: Finance
    lead: ann
stories:
  - id: td-st01
    name: Close the quarter
    project: FIN
    subtasks:
      - id: td-0001
        name: Post accruals
        status: done
        assignees: [ann]
        completed_by: ann
        completed_at: 2026-03-30T09:00:00Z
        first_verified_by: vera
      - id: td-0002
        name: Reconcile bank
        project: OPS
tasks:
  - id: td-0100
    name: Renew insurance
    priority: 1
    due: 2026-04-15
`

func TestRequestFlattensStories(t *testing.T) {
	f, err := Parse([]byte(quarterClose))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	req, err := f.Request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if req.Dedupe != "error" || len(req.Roles) != 1 || len(req.Users) != 2 || len(req.Projects) != 1 {
		t.Fatalf("unexpected directory records: %+v", req)
	}
	if req.Projects[0].ProjectLead != "ann" || req.Users[1].DisplayName != "Vera Verifier" {
		t.Fatalf("unexpected fields: %+v %+v", req.Projects[0], req.Users[1])
	}

	ids := make([]string, 0, len(req.Tasks))
	for _, rec := range req.Tasks {
		ids = append(ids, rec.ID)
	}
	if strings.Join(ids, ",") != "td-st01,td-0001,td-0002,td-0100" {
		t.Fatalf("unexpected task order: %v", ids)
	}

	story := req.Tasks[0]
	if *story.Type != "story" || strings.Join(story.SubTaskIDs, ",") != "td-0001,td-0002" {
		t.Fatalf("unexpected story: %+v", story)
	}

	accruals := req.Tasks[1]
	if accruals.ParentTaskID != "td-st01" || accruals.Project != "FIN" || *accruals.Type != "task" {
		t.Fatalf("unexpected subtask: %+v", accruals)
	}
	if accruals.Status == nil || *accruals.Status != "done" || accruals.CompletedBy != "ann" || accruals.FirstVerifiedBy != "vera" {
		t.Fatalf("unexpected history: %+v", accruals)
	}
	if accruals.CompletedAt == nil || accruals.CompletedAt.Day() != 30 {
		t.Fatalf("unexpected completed_at: %v", accruals.CompletedAt)
	}
	if req.Tasks[2].Project != "OPS" {
		t.Fatalf("explicit subtask project should win, got %q", req.Tasks[2].Project)
	}

	standalone := req.Tasks[3]
	if standalone.ParentTaskID != "" || standalone.Status != nil || standalone.DueDate != "2026-04-15" {
		t.Fatalf("unexpected standalone task: %+v", standalone)
	}
	if standalone.Priority == nil || *standalone.Priority != 1 {
		t.Fatalf("unexpected priority: %v", standalone.Priority)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":       "  \n",
		"unknown key": "tasks:\n  - id: td-0001\n    title: wrong key\n",
		"bad yaml":    "tasks: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRequestRequiresIDs(t *testing.T) {
	cases := map[string]string{
		"story":   "stories:\n  - name: Close\n",
		"subtask": "stories:\n  - id: td-st01\n    name: Close\n    subtasks:\n      - name: Post\n",
		"task":    "tasks:\n  - name: Renew\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := Parse([]byte(body))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := f.Request(); err == nil || !strings.Contains(err.Error(), "id is required") {
				t.Fatalf("expected missing id error, got %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(quarterClose), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Stories) != 1 || len(f.Stories[0].Subtasks) != 2 || len(f.Tasks) != 1 {
		t.Fatalf("unexpected fixture: %+v", f)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
