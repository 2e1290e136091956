package server

import (
	"errors"
	"testing"
)

func TestValidateID(t *testing.T) {
	valid := []string{"td-ab12", "pj-0000", "us-zzzz"}
	invalid := []string{"", "td-ab1", "TD-ab12", "td_ab12", "td-ab12-td-cd34", "tdx-ab12"}
	for _, id := range valid {
		if !validateID(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}
	for _, id := range invalid {
		if validateID(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	if got, err := normalizePriority(nil); err != nil || got != 2 {
		t.Fatalf("expected default priority 2, got %d %v", got, err)
	}
	bad := 9
	_, err := normalizePriority(&bad)
	var apiErr apiError
	if !errors.As(err, &apiErr) || apiErr.errCode != ErrCodeInvalidPriority {
		t.Fatalf("expected invalid priority error, got %v", err)
	}
}

func TestNormalizeProjectCode(t *testing.T) {
	if code, err := normalizeProjectCode(" fin2 "); err != nil || code != "FIN2" {
		t.Fatalf("expected FIN2, got %q %v", code, err)
	}
	for _, raw := range []string{"", "F", "1FIN", "FIN-1", "ABCDEFGHIJK"} {
		if _, err := normalizeProjectCode(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestNormalizeStatusAndType(t *testing.T) {
	if status, err := normalizeStatus("IN_PROGRESS"); err != nil || status != "in_progress" {
		t.Fatalf("unexpected status %q %v", status, err)
	}
	if _, err := normalizeStatus("closed"); httpStatusFromError(err) != 400 {
		t.Fatalf("expected 400 for invalid status, got %v", err)
	}
	if _, err := normalizeType("epic"); httpStatusFromError(err) != 400 {
		t.Fatalf("expected 400 for invalid type, got %v", err)
	}
}
