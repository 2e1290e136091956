package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check, info and identity.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)
	mux.HandleFunc("GET /v1/me", s.handleMe)

	// Tasks collection.
	mux.HandleFunc("GET /v1/tasks", s.handleListTasks)
	mux.HandleFunc("POST /v1/tasks", s.handleCreateTask)

	// Workflow transitions, applied per task.
	mux.HandleFunc("POST /v1/tasks/complete", s.handleComplete)
	mux.HandleFunc("POST /v1/tasks/first-verify", s.handleFirstVerify)
	mux.HandleFunc("POST /v1/tasks/second-verify", s.handleSecondVerify)

	// Single task.
	mux.HandleFunc("PATCH /v1/tasks/{id}", s.handleUpdateTask)

	// Projects.
	mux.HandleFunc("GET /v1/projects", s.handleListProjects)
	mux.HandleFunc("POST /v1/projects", s.handleCreateProject)

	// Admin.
	mux.HandleFunc("GET /v1/admin/users", s.requireAdmin(s.handleAdminListUsers))
	mux.HandleFunc("POST /v1/admin/users", s.requireAdmin(s.handleAdminCreateUser))
	mux.HandleFunc("POST /v1/admin/roles", s.requireAdmin(s.handleAdminUpsertRole))
	mux.HandleFunc("POST /v1/admin/import", s.requireAdmin(s.handleAdminImport))

	return mux
}
