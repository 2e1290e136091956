package store

import (
	"context"
	"testing"
	"time"

	"taskdesk/internal/models"
)

func TestUpsertRoleReplacesPermissions(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	role := models.Role{Name: "Auditor", Permissions: models.NewPermissionSet(models.PermFirstVerify)}
	if err := st.UpsertRole(ctx, role, now); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	role.Permissions = models.NewPermissionSet(models.PermFirstVerify, models.PermSecondVerify)
	if err := st.UpsertRole(ctx, role, now); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	got, err := st.GetRole(ctx, "auditor")
	if err != nil {
		t.Fatalf("get role: %v", err)
	}
	if got == nil || !got.Permissions.Has(models.PermSecondVerify) || got.Permissions.Has(models.PermMarkComplete) {
		t.Fatalf("unexpected role: %+v", got)
	}

	roles, err := st.ListRoles(ctx)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	// admin, auditor, member, verifier
	if len(roles) != 4 || roles[1].Name != "auditor" {
		t.Fatalf("unexpected roles: %+v", roles)
	}
}

func TestRoleWithoutPermissions(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if err := st.UpsertRole(ctx, models.Role{Name: "viewer"}, time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := st.GetRole(ctx, "viewer")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || len(got.Permissions) != 0 {
		t.Fatalf("expected empty permission set, got %+v", got)
	}
}

func TestCreateUserLoadsRole(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	user := &UserRecord{
		User:         models.User{ID: "us-0001", Username: "  Alice ", Role: models.Role{Name: "Verifier"}},
		PasswordHash: "bcrypt-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Username != "alice" || !user.Can(models.PermFirstVerify) {
		t.Fatalf("expected normalized user with role loaded, got %+v", user)
	}

	byName, err := st.GetUserByUsername(ctx, "ALICE")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName == nil || byName.ID != "us-0001" || byName.PasswordHash != "bcrypt-hash" {
		t.Fatalf("unexpected user: %+v", byName)
	}
	if byName.Can(models.PermSecondVerify) {
		t.Fatal("verifier must not second verify")
	}

	byID, err := st.GetUserByID(ctx, "us-0001")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID == nil || byID.Name() != "alice" {
		t.Fatalf("unexpected user: %+v", byID)
	}
}

func TestCreateUserUnknownRole(t *testing.T) {
	st := testStore(t)
	now := time.Now()
	user := &UserRecord{User: models.User{ID: "us-0001", Username: "bob", Role: models.Role{Name: "ghost"}}, CreatedAt: now, UpdatedAt: now}
	if err := st.CreateUser(context.Background(), user); err == nil {
		t.Fatal("expected foreign key error for unknown role")
	}
}

func TestCountEnabledUsersIgnoresPasswordless(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	seedWorkspace(t, st)

	count, err := st.CountEnabledUsers(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 enabled user with credentials, got %d", count)
	}

	users, err := st.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].Username != "lead" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestGetUserMissing(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if user, err := st.GetUserByUsername(ctx, "   "); err != nil || user != nil {
		t.Fatalf("expected nil for blank username, got %+v %v", user, err)
	}
	if user, err := st.GetUserByID(ctx, "us-none"); err != nil || user != nil {
		t.Fatalf("expected nil for unknown id, got %+v %v", user, err)
	}
}
