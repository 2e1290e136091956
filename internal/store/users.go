package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskdesk/internal/models"
)

// UserRecord is a stored user with credentials and bookkeeping fields.
type UserRecord struct {
	models.User
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userColumns = `u.id, u.username, u.display_name, u.password_hash, u.disabled, u.created_at, u.updated_at,
	r.name, r.permissions`

// UpsertRole creates a role or replaces its permission set.
func (s *Store) UpsertRole(ctx context.Context, role models.Role, at time.Time) error {
	name := normalizeRoleName(role.Name)
	if name == "" {
		return fmt.Errorf("role name is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roles (name, permissions, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET permissions = excluded.permissions, updated_at = excluded.updated_at
	`, name, strings.Join(role.Permissions.Strings(), ","), formatTime(at))
	return err
}

// GetRole returns a role by name, or nil if it does not exist.
func (s *Store) GetRole(ctx context.Context, name string) (*models.Role, error) {
	row := s.db.QueryRowContext(ctx, "SELECT name, permissions FROM roles WHERE name = ?", normalizeRoleName(name))
	return scanRole(row)
}

// ListRoles returns all roles sorted by name.
func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, permissions FROM roles ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]models.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// CountEnabledUsers returns the number of non-disabled users with a password.
func (s *Store) CountEnabledUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE disabled = 0 AND password_hash IS NOT NULL AND password_hash != ''
	`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CreateUser inserts a user. The role must already exist.
func (s *Store) CreateUser(ctx context.Context, user *UserRecord) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	user.Username = NormalizeUsername(user.Username)
	user.Role.Name = normalizeRoleName(user.Role.Name)
	if user.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if user.Username == "" {
		return fmt.Errorf("username is required")
	}
	if user.Role.Name == "" {
		return fmt.Errorf("role is required")
	}

	disabled := 0
	if user.Disabled {
		disabled = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, display_name, password_hash, role, disabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, nullIfEmpty(user.DisplayName), nullIfEmpty(user.PasswordHash), user.Role.Name,
		disabled, formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	if err != nil {
		return err
	}

	role, err := s.GetRole(ctx, user.Role.Name)
	if err != nil {
		return err
	}
	if role != nil {
		user.Role = *role
	}
	return nil
}

// GetUserByID returns a user with its role, or nil if it does not exist.
func (s *Store) GetUserByID(ctx context.Context, id string) (*UserRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u JOIN roles r ON r.name = u.role
		WHERE u.id = ?
		LIMIT 1
	`, id)
	return scanUser(row)
}

// GetUserByUsername returns a user by normalized username, or nil if it does not exist.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*UserRecord, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u JOIN roles r ON r.name = u.role
		WHERE u.username = ?
		LIMIT 1
	`, username)
	return scanUser(row)
}

// ListUsers returns all users sorted by username.
func (s *Store) ListUsers(ctx context.Context) ([]UserRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users u JOIN roles r ON r.name = u.role
		ORDER BY u.username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]UserRecord, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(strings.ToLower(username))
}

func normalizeRoleName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func scanRole(scanner interface {
	Scan(dest ...any) error
}) (*models.Role, error) {
	var role models.Role
	var permissions string
	if err := scanner.Scan(&role.Name, &permissions); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	perms, err := models.ParsePermissionSet(strings.Split(permissions, ","))
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", role.Name, err)
	}
	role.Permissions = perms
	return &role, nil
}

func scanUser(scanner interface {
	Scan(dest ...any) error
}) (*UserRecord, error) {
	var user UserRecord
	var displayName, passwordHash sql.NullString
	var disabled int
	var createdAt, updatedAt string
	var permissions string
	if err := scanner.Scan(
		&user.ID,
		&user.Username,
		&displayName,
		&passwordHash,
		&disabled,
		&createdAt,
		&updatedAt,
		&user.Role.Name,
		&permissions,
	); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	user.DisplayName = displayName.String
	user.PasswordHash = passwordHash.String
	user.Disabled = disabled != 0

	perms, err := models.ParsePermissionSet(strings.Split(permissions, ","))
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", user.Role.Name, err)
	}
	user.Role.Permissions = perms

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
