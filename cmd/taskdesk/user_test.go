package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
)

func TestUserListUsesAPIClient(t *testing.T) {
	var called atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet || r.URL.Path != "/v1/admin/users" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
			return
		}
		called.Store(true)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	cfg := config.Default()
	cfg.APIURL = ts.URL
	cfg.DBPath = "/definitely/not/used.db"

	jsonOutput := false
	cmd := newUserListCmd(&cfg, &jsonOutput)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute user list: %v", err)
	}
	if !called.Load() {
		t.Fatal("expected user list to call API endpoint")
	}
}

func TestUserCreateReadsPasswordFromStdin(t *testing.T) {
	var got api.UserCreateRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"us-ann1","username":"ann","role":{"name":"member"}}`))
	}))
	defer ts.Close()

	oldStdin := stdin
	stdin = strings.NewReader("correct-horse\n")
	defer func() { stdin = oldStdin }()

	cfg := config.Default()
	cfg.APIURL = ts.URL
	jsonOutput := true
	cmd := newUserCreateCmd(&cfg, &jsonOutput)
	cmd.SetArgs([]string{"Ann", "--role", "member", "--password-stdin"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute user create: %v", err)
	}
	if got.Username != "ann" || got.Password != "correct-horse" || got.Role != "member" {
		t.Fatalf("unexpected request: %+v", got)
	}

	cmd = newUserCreateCmd(&cfg, &jsonOutput)
	cmd.SetArgs([]string{"bob"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected missing --role to fail")
	}
}
