package server

import (
	"net/http"

	"taskdesk/internal/api"
	"taskdesk/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.StoreInfo(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	required, _ := authRequiredFromContext(r.Context())
	resp := api.InfoResponse{
		SchemaVersion: info.SchemaVersion,
		TaskCounts:    info.TaskCounts,
		TotalTasks:    info.TotalTasks,
		ProjectCount:  info.ProjectCount,
		AuthRequired:  required,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleMe reports who the caller is. Unauthenticated local clients may name
// themselves with ?username=.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	required, _ := authRequiredFromContext(r.Context())

	var principal *store.UserRecord
	if p, ok := authPrincipalFromContext(r.Context()); ok {
		principal = p.User
	}

	resp, err := s.directory.Me(r.Context(), principal, required, r.URL.Query().Get("username"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
