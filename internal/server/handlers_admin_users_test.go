package server

import (
	"net/http"
	"testing"

	"taskdesk/internal/api"
	internalauth "taskdesk/internal/auth"
	"taskdesk/internal/models"
)

func TestAdminCreateUser(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, http.MethodPost, "/v1/admin/users", api.UserCreateRequest{
		Username:    "Ann",
		DisplayName: "Ann Analyst",
		Password:    testPassword,
		Role:        "verifier",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	created := decodeBody[api.UserResponse](t, w)
	if created.Username != "ann" || created.Role.Name != "verifier" || !validateID(created.ID) {
		t.Fatalf("unexpected user: %+v", created)
	}
	if !created.Role.Permissions.Has(models.PermFirstVerify) {
		t.Fatalf("expected verifier permissions, got %+v", created.Role)
	}

	stored, err := st.GetUserByUsername(t.Context(), "ann")
	if err != nil || stored == nil {
		t.Fatalf("get user: %v", err)
	}
	if !internalauth.VerifyPassword(stored.PasswordHash, testPassword) {
		t.Fatal("expected stored bcrypt hash to verify")
	}

	w = doJSON(t, h, http.MethodPost, "/v1/admin/users", api.UserCreateRequest{Username: "ann", Role: "member"}, withBasicAuth("ann", testPassword))
	requireErrorCode(t, w, http.StatusForbidden, ErrCodeForbidden)
}

func TestAdminCreateUser_Errors(t *testing.T) {
	srv, st := newTestServer(t)
	seedUser(t, st, "us-ann1", "ann", "member", "")
	h := srv.Handler()

	cases := []struct {
		name   string
		req    api.UserCreateRequest
		status int
		code   int
	}{
		{name: "duplicate username", req: api.UserCreateRequest{Username: "ann", Role: "member"}, status: http.StatusConflict, code: ErrCodeConflict},
		{name: "unknown role", req: api.UserCreateRequest{Username: "bob", Role: "wizard"}, status: http.StatusNotFound, code: ErrCodeRoleNotFound},
		{name: "missing role", req: api.UserCreateRequest{Username: "bob"}, status: http.StatusBadRequest, code: ErrCodeMissingRequired},
		{name: "short password", req: api.UserCreateRequest{Username: "bob", Role: "member", Password: "short"}, status: http.StatusBadRequest, code: ErrCodeInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/v1/admin/users", tc.req)
			requireErrorCode(t, w, tc.status, tc.code)
		})
	}
}

func TestAdminListUsersAndRoles(t *testing.T) {
	srv, st := newTestServer(t)
	seedUser(t, st, "us-ann1", "ann", "member", "")
	h := srv.Handler()

	w := doJSON(t, h, http.MethodPost, "/v1/admin/roles", api.RoleRequest{Name: "Auditor", Permissions: []string{"first-verify-task", "second-verify-task"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	role := decodeBody[models.Role](t, w)
	if role.Name != "auditor" || !role.Permissions.Has(models.PermSecondVerify) || role.Permissions.Has(models.PermMarkComplete) {
		t.Fatalf("unexpected role: %+v", role)
	}

	w = doJSON(t, h, http.MethodPost, "/v1/admin/roles", api.RoleRequest{Name: "bad", Permissions: []string{"delete-everything"}})
	requireErrorCode(t, w, http.StatusBadRequest, ErrCodeInvalidPermission)

	w = doJSON(t, h, http.MethodGet, "/v1/admin/users", nil)
	users := decodeBody[[]api.UserResponse](t, w)
	if len(users) != 1 || users[0].Username != "ann" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestProjects(t *testing.T) {
	srv, st := newTestServer(t)
	seedUser(t, st, "us-ann1", "ann", "member", "")
	h := srv.Handler()

	w := doJSON(t, h, http.MethodPost, "/v1/projects", api.ProjectCreateRequest{Code: "fin", Name: "Finance", ProjectLead: "ann"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	project := decodeBody[models.Project](t, w)
	if project.Code != "FIN" || project.ProjectLeadID != "us-ann1" {
		t.Fatalf("unexpected project: %+v", project)
	}

	w = doJSON(t, h, http.MethodPost, "/v1/projects", api.ProjectCreateRequest{Code: "FIN", Name: "Again"})
	requireErrorCode(t, w, http.StatusConflict, ErrCodeConflict)

	w = doJSON(t, h, http.MethodPost, "/v1/projects", api.ProjectCreateRequest{Code: "1X", Name: "Bad"})
	requireErrorCode(t, w, http.StatusBadRequest, ErrCodeInvalidArgument)

	w = doJSON(t, h, http.MethodGet, "/v1/projects", nil)
	projects := decodeBody[[]models.Project](t, w)
	if len(projects) != 1 || projects[0].ID != project.ID {
		t.Fatalf("unexpected projects: %+v", projects)
	}
}
