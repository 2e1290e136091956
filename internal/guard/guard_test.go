package guard

import (
	"testing"
	"time"

	"taskdesk/internal/models"
)

func userWith(id string, perms ...models.Permission) models.User {
	return models.User{ID: id, Username: id, Role: models.Role{Name: "r", Permissions: models.NewPermissionSet(perms...)}}
}

func doneTask() models.Task {
	return models.Task{ID: "t1", Name: "Collect receipts", Type: models.TypeTask, Status: models.StatusDone,
		Project: &models.ProjectRef{ID: "p1", ProjectLeadID: "lead"}}
}

func verified(task models.Task, first, second string) models.Task {
	now := time.Now().UTC()
	if first != "" {
		task.FirstVerifiedBy = first
		task.FirstVerifiedAt = &now
	}
	if second != "" {
		task.SecondVerifiedBy = second
		task.SecondVerifiedAt = &now
	}
	return task
}

var allStatuses = []models.TaskStatus{models.StatusOpen, models.StatusInProgress, models.StatusDone}

func TestFirstVerifyOnDoneTask(t *testing.T) {
	task := doneTask()
	user := userWith("u1", models.PermFirstVerify)

	if !CanFirstVerify(task, user) {
		t.Fatal("expected first verify allowed")
	}
	if CanSecondVerify(task, user) {
		t.Fatal("second verify must not be allowed before first verify")
	}
	display := Describe(FirstVerify, task, user)
	if display.State != StateAvailable || display.Label != "✓ 1st Verify" {
		t.Fatalf("unexpected display %+v", display)
	}
}

func TestCompleteRequiresInProgress(t *testing.T) {
	users := []models.User{
		userWith("u1", models.PermMarkComplete),
		userWith("lead"),
		userWith("u2", models.PermMarkComplete, models.PermFirstVerify, models.PermSecondVerify),
	}
	for _, status := range allStatuses {
		task := doneTask()
		task.Status = status
		for _, user := range users {
			got := CanComplete(task, user)
			if status != models.StatusInProgress && got {
				t.Fatalf("complete allowed for status %s user %s", status, user.ID)
			}
			if status == models.StatusInProgress && !got {
				t.Fatalf("complete denied for in-progress task, user %s", user.ID)
			}
		}
	}
}

func TestCompleteProjectLeadWithoutPermission(t *testing.T) {
	task := doneTask()
	task.Status = models.StatusInProgress

	if !CanComplete(task, userWith("lead")) {
		t.Fatal("project lead should be able to complete")
	}
	if CanComplete(task, userWith("someone")) {
		t.Fatal("non-lead without permission should not complete")
	}

	task.Project = nil
	if CanComplete(task, userWith("lead")) {
		t.Fatal("lead rule needs a known project")
	}
}

func TestSecondVerifyRequiresFirstVerification(t *testing.T) {
	everything := userWith("u", models.PermMarkComplete, models.PermFirstVerify, models.PermSecondVerify)
	for _, status := range allStatuses {
		task := doneTask()
		task.Status = status
		if CanSecondVerify(task, everything) {
			t.Fatalf("second verify allowed without first verification (status %s)", status)
		}
	}

	task := verified(doneTask(), "u1", "")
	if !CanSecondVerify(task, everything) {
		t.Fatal("expected second verify after first verification")
	}
	if CanSecondVerify(task, userWith("u", models.PermFirstVerify)) {
		t.Fatal("second verify needs its own permission")
	}
}

func TestCheckMessages(t *testing.T) {
	admin := userWith("u", models.PermMarkComplete, models.PermFirstVerify, models.PermSecondVerify)

	cases := []struct {
		name       string
		transition Transition
		task       models.Task
		user       models.User
		reason     Reason
		message    string
	}{
		{"complete open", Complete, func() models.Task { task := doneTask(); task.Status = models.StatusOpen; return task }(),
			admin, ReasonNotReady, "Only tasks in progress can be marked complete"},
		{"complete done", Complete, doneTask(), admin, ReasonAlreadyDone, "Task is already completed"},
		{"first verify twice", FirstVerify, verified(doneTask(), "u", ""), admin, ReasonAlreadyDone, "Task is already first verified"},
		{"first verify no perm", FirstVerify, doneTask(), userWith("x"), ReasonNoPermission, "You do not have permission to first verify tasks"},
		{"second verify twice", SecondVerify, verified(doneTask(), "u", "v"), admin, ReasonAlreadyDone, "Task is already second verified"},
		{"second verify early", SecondVerify, doneTask(), admin, ReasonNotReady, "Task must be first verified before second verification"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := AsViolation(Check(tc.transition, tc.task, tc.user))
			if !ok {
				t.Fatal("expected violation")
			}
			if v.Reason != tc.reason || v.Message != tc.message {
				t.Fatalf("unexpected violation %+v", v)
			}
		})
	}
}

func TestDescribeKeepsNoPermissionDistinct(t *testing.T) {
	task := doneTask()
	task.Status = models.StatusInProgress

	noPerm := Describe(Complete, task, userWith("x"))
	if noPerm.State != StateNoPermission || noPerm.Label != "No Permission" {
		t.Fatalf("unexpected display %+v", noPerm)
	}

	task.Status = models.StatusOpen
	notReady := Describe(Complete, task, userWith("x"))
	if notReady.State != StateNotReady {
		t.Fatalf("expected not ready for open task, got %+v", notReady)
	}

	done := DescribeAll(Transitions, verified(doneTask(), "a", "b"), userWith("x"))
	want := []string{"✓ Done", "✓ 1st Done", "✓✓ 2nd Done"}
	for i, display := range done {
		if display.State != StateDone || display.Label != want[i] {
			t.Fatalf("unexpected display %d: %+v", i, display)
		}
	}
}

func TestParseTransition(t *testing.T) {
	got, err := ParseTransition(" First-Verify ")
	if err != nil || got != FirstVerify {
		t.Fatalf("expected first-verify, got %q (%v)", got, err)
	}
	if _, err := ParseTransition("approve"); err == nil {
		t.Fatal("expected error for unknown transition")
	}
}
