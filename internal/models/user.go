package models

import (
	"fmt"
	"sort"
	"strings"
)

// Permission is a named capability granted through a role.
type Permission string

const (
	PermMarkComplete Permission = "mark-complete-task"
	PermFirstVerify  Permission = "first-verify-task"
	PermSecondVerify Permission = "second-verify-task"
)

var validPermissions = map[Permission]struct{}{
	PermMarkComplete: {},
	PermFirstVerify:  {},
	PermSecondVerify: {},
}

func ParsePermission(raw string) (Permission, error) {
	value := Permission(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("permission is required")
	}
	if _, ok := validPermissions[value]; !ok {
		return "", fmt.Errorf("invalid permission: %s", value)
	}
	return value, nil
}

// PermissionSet is an unordered set of permissions.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, perm := range perms {
		set[perm] = struct{}{}
	}
	return set
}

// ParsePermissionSet parses and validates raw permission names.
func ParsePermissionSet(raw []string) (PermissionSet, error) {
	set := make(PermissionSet, len(raw))
	for _, value := range raw {
		if strings.TrimSpace(value) == "" {
			continue
		}
		perm, err := ParsePermission(value)
		if err != nil {
			return nil, err
		}
		set[perm] = struct{}{}
	}
	return set, nil
}

func (s PermissionSet) Has(perm Permission) bool {
	_, ok := s[perm]
	return ok
}

// Strings returns the permissions sorted by name.
func (s PermissionSet) Strings() []string {
	out := make([]string, 0, len(s))
	for perm := range s {
		out = append(out, string(perm))
	}
	sort.Strings(out)
	return out
}

func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return marshalStrings(s.Strings())
}

func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	raw, err := unmarshalStrings(data)
	if err != nil {
		return err
	}
	parsed, err := ParsePermissionSet(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Role groups permissions under a name.
type Role struct {
	Name        string        `json:"name"`
	Permissions PermissionSet `json:"permissions"`
}

// User is an actor of the workflow.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Role        Role   `json:"role"`
}

// Can reports whether the user's role grants perm.
func (u User) Can(perm Permission) bool {
	return u.Role.Permissions.Has(perm)
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return u.Username
}
