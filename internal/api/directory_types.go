package api

import (
	"time"

	"taskdesk/internal/models"
)

// ProjectCreateRequest defines the payload for creating a project.
// ProjectLead accepts a user id or username.
type ProjectCreateRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	ProjectLead string `json:"project_lead,omitempty"`
}

// UserCreateRequest defines the payload for provisioning a user.
// Password may be empty for users that never authenticate directly.
type UserCreateRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Password    string `json:"password,omitempty"`
	Role        string `json:"role"`
}

// UserResponse is a user without credentials.
type UserResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name,omitempty"`
	Role        models.Role `json:"role"`
	Disabled    bool        `json:"disabled"`
	CreatedAt   time.Time   `json:"created_at"`
}

// User returns the domain view used by the transition guard.
func (u UserResponse) User() models.User {
	return models.User{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Role: u.Role}
}

// RoleRequest creates or replaces a role.
type RoleRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// MeResponse is the response from GET /v1/me.
type MeResponse struct {
	AuthRequired bool          `json:"auth_required"`
	User         *UserResponse `json:"user,omitempty"`
}
