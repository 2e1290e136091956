package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskdesk/internal/api"
	internalauth "taskdesk/internal/auth"
	"taskdesk/internal/models"
	"taskdesk/internal/store"
)

// DirectoryService manages projects, users and roles.
type DirectoryService struct {
	projects store.ProjectStore
	users    store.UserStore
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(projects store.ProjectStore, users store.UserStore) *DirectoryService {
	return &DirectoryService{projects: projects, users: users}
}

// ResolveProject finds a project by id or code. It returns nil for a blank ref.
func (d *DirectoryService) ResolveProject(ctx context.Context, ref string) (*models.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	var project *models.Project
	var err error
	if validateID(ref) {
		project, err = d.projects.GetProject(ctx, ref)
	} else {
		project, err = d.projects.GetProjectByCode(ctx, ref)
	}
	if err != nil {
		return nil, storeFailure(err)
	}
	if project == nil {
		return nil, notFoundCode(fmt.Errorf("project not found: %s", ref), ErrCodeProjectNotFound)
	}
	return project, nil
}

// ResolveUser finds a user by id or username. It returns nil for a blank ref.
func (d *DirectoryService) ResolveUser(ctx context.Context, ref string) (*store.UserRecord, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	var user *store.UserRecord
	var err error
	if validateID(ref) {
		user, err = d.users.GetUserByID(ctx, ref)
	} else {
		user, err = d.users.GetUserByUsername(ctx, ref)
	}
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		return nil, notFoundCode(fmt.Errorf("user not found: %s", ref), ErrCodeUserNotFound)
	}
	return user, nil
}

// CreateProject validates and stores a new project.
func (d *DirectoryService) CreateProject(ctx context.Context, req api.ProjectCreateRequest) (models.Project, error) {
	code, err := normalizeProjectCode(req.Code)
	if err != nil {
		return models.Project{}, err
	}
	name, err := normalizeName(req.Name, "name")
	if err != nil {
		return models.Project{}, err
	}

	leadID := ""
	if strings.TrimSpace(req.ProjectLead) != "" {
		lead, err := d.ResolveUser(ctx, req.ProjectLead)
		if err != nil {
			return models.Project{}, err
		}
		leadID = lead.ID
	}

	id, err := store.GenerateProjectID(d.projects.ProjectExists)
	if err != nil {
		return models.Project{}, err
	}

	project := models.Project{ID: id, Code: code, Name: name, ProjectLeadID: leadID, CreatedAt: time.Now().UTC()}
	if err := d.projects.CreateProject(ctx, &project); err != nil {
		if isUniqueConstraint(err, "projects.code") {
			return models.Project{}, conflictCode(fmt.Errorf("project code already exists: %s", code), ErrCodeConflict)
		}
		return models.Project{}, storeFailure(err)
	}
	return project, nil
}

func (d *DirectoryService) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := d.projects.ListProjects(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	return projects, nil
}

// CreateUser provisions a user. The password is optional.
func (d *DirectoryService) CreateUser(ctx context.Context, req api.UserCreateRequest) (api.UserResponse, error) {
	username, err := internalauth.NormalizeUsername(req.Username)
	if err != nil {
		return api.UserResponse{}, badRequest(err)
	}

	roleName := strings.TrimSpace(req.Role)
	if roleName == "" {
		return api.UserResponse{}, badRequestCode(fmt.Errorf("role is required"), ErrCodeMissingRequired)
	}
	role, err := d.users.GetRole(ctx, roleName)
	if err != nil {
		return api.UserResponse{}, storeFailure(err)
	}
	if role == nil {
		return api.UserResponse{}, notFoundCode(fmt.Errorf("role not found: %s", roleName), ErrCodeRoleNotFound)
	}

	passwordHash := ""
	if req.Password != "" {
		passwordHash, err = internalauth.HashPassword(req.Password)
		if err != nil {
			return api.UserResponse{}, badRequest(err)
		}
	}

	id, err := store.GenerateUserID(d.users.UserExists)
	if err != nil {
		return api.UserResponse{}, err
	}

	now := time.Now().UTC()
	record := &store.UserRecord{
		User: models.User{
			ID:          id,
			Username:    username,
			DisplayName: strings.TrimSpace(req.DisplayName),
			Role:        *role,
		},
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := d.users.CreateUser(ctx, record); err != nil {
		if isUniqueConstraint(err, "users.username") {
			return api.UserResponse{}, conflictCode(fmt.Errorf("username already exists"), ErrCodeConflict)
		}
		return api.UserResponse{}, storeFailure(err)
	}
	return toAPIUser(*record), nil
}

func (d *DirectoryService) ListUsers(ctx context.Context) ([]api.UserResponse, error) {
	users, err := d.users.ListUsers(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	resp := make([]api.UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toAPIUser(user))
	}
	return resp, nil
}

// UpsertRole creates a role or replaces its permissions.
func (d *DirectoryService) UpsertRole(ctx context.Context, req api.RoleRequest) (models.Role, error) {
	name, err := normalizeName(strings.ToLower(req.Name), "role name")
	if err != nil {
		return models.Role{}, err
	}
	perms, err := models.ParsePermissionSet(req.Permissions)
	if err != nil {
		return models.Role{}, badRequestCode(err, ErrCodeInvalidPermission)
	}
	role := models.Role{Name: name, Permissions: perms}
	if err := d.users.UpsertRole(ctx, role, time.Now().UTC()); err != nil {
		return models.Role{}, storeFailure(err)
	}
	return role, nil
}

// Me resolves the calling user: the authenticated principal when present,
// otherwise the username hint supplied by a trusted local client.
func (d *DirectoryService) Me(ctx context.Context, principal *store.UserRecord, authRequired bool, username string) (api.MeResponse, error) {
	resp := api.MeResponse{AuthRequired: authRequired}
	if principal != nil {
		if username != "" && store.NormalizeUsername(username) != principal.Username {
			return resp, forbiddenCode(fmt.Errorf("username does not match credentials"), ErrCodeActorMismatch)
		}
		user := toAPIUser(*principal)
		resp.User = &user
		return resp, nil
	}
	if strings.TrimSpace(username) == "" {
		return resp, nil
	}
	record, err := d.users.GetUserByUsername(ctx, username)
	if err != nil {
		return resp, storeFailure(err)
	}
	if record == nil {
		return resp, notFoundCode(fmt.Errorf("user not found: %s", username), ErrCodeUserNotFound)
	}
	user := toAPIUser(*record)
	resp.User = &user
	return resp, nil
}

func toAPIUser(user store.UserRecord) api.UserResponse {
	return api.UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Disabled:    user.Disabled,
		CreatedAt:   user.CreatedAt,
	}
}
