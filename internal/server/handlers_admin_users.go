package server

import (
	"net/http"

	"taskdesk/internal/api"
)

func (s *Server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.UserCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	created, err := s.directory.CreateUser(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.log().Info("user created", "user_id", created.ID, "username", created.Username, "role", created.Role.Name)
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.directory.ListUsers(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleAdminUpsertRole(w http.ResponseWriter, r *http.Request) {
	var req api.RoleRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	role, err := s.directory.UpsertRole(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, role)
}

func (s *Server) handleAdminImport(w http.ResponseWriter, r *http.Request) {
	var req api.ImportRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	s.withLimiter(w, r, s.importLimiter, "import", func() {
		resp, err := s.importer.Import(r.Context(), req)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.log().Info("import applied",
			"dry_run", resp.DryRun,
			"created", resp.Created,
			"skipped", resp.Skipped,
			"errors", resp.Errors,
		)
		s.writeJSON(w, http.StatusOK, resp)
	})
}
