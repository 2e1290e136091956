package models

import (
	"encoding/json"
	"testing"
)

func TestParseTaskStatus(t *testing.T) {
	got, err := ParseTaskStatus(" IN_PROGRESS ")
	if err != nil {
		t.Fatalf("parse status: %v", err)
	}
	if got != StatusInProgress {
		t.Fatalf("expected %q, got %q", StatusInProgress, got)
	}

	if _, err := ParseTaskStatus("closed"); err == nil {
		t.Fatal("expected invalid status error")
	}
}

func TestParseTaskType(t *testing.T) {
	got, err := ParseTaskType(" Story ")
	if err != nil {
		t.Fatalf("parse type: %v", err)
	}
	if got != TypeStory {
		t.Fatalf("expected %q, got %q", TypeStory, got)
	}

	if _, err := ParseTaskType("epic"); err == nil {
		t.Fatal("expected invalid type error")
	}
}

func TestIsForwardStatus(t *testing.T) {
	cases := []struct {
		from, to TaskStatus
		want     bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusInProgress, StatusDone, true},
		{StatusOpen, StatusDone, true},
		{StatusDone, StatusInProgress, false},
		{StatusInProgress, StatusInProgress, false},
		{TaskStatus("bogus"), StatusDone, false},
	}
	for _, tc := range cases {
		if got := IsForwardStatus(tc.from, tc.to); got != tc.want {
			t.Fatalf("IsForwardStatus(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTypeLabel(t *testing.T) {
	if got := TypeLabel(TypeStory); got != "Task" {
		t.Fatalf("expected Task, got %q", got)
	}
	if got := TypeLabel(TypeTask); got != "Subtask" {
		t.Fatalf("expected Subtask, got %q", got)
	}
}

func TestPermissionSetJSON(t *testing.T) {
	set := NewPermissionSet(PermSecondVerify, PermFirstVerify)
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["first-verify-task","second-verify-task"]` {
		t.Fatalf("unexpected json: %s", data)
	}

	var decoded PermissionSet
	if err := json.Unmarshal([]byte(`["mark-complete-task"]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Has(PermMarkComplete) || decoded.Has(PermFirstVerify) {
		t.Fatalf("unexpected set: %v", decoded.Strings())
	}

	if err := json.Unmarshal([]byte(`["approve-worklog"]`), &decoded); err == nil {
		t.Fatal("expected unknown permission to be rejected")
	}
}

func TestIsValidPriority(t *testing.T) {
	if !IsValidPriority(DefaultPriority) {
		t.Fatalf("expected default priority %d to be valid", DefaultPriority)
	}
	if IsValidPriority(PriorityMax + 1) {
		t.Fatalf("expected %d to be invalid", PriorityMax+1)
	}
}
