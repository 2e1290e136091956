package server

import (
	"errors"
	"net/http"

	"taskdesk/internal/api"
	"taskdesk/internal/guard"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	query := r.URL.Query()
	tasks, err := s.tasks.List(r.Context(), ListQuery{
		Project:  query.Get("project"),
		Statuses: splitCSV(query.Get("status")),
		Assignee: query.Get("assignee"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req api.TaskCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	task, err := s.tasks.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.TaskUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	task, err := s.tasks.UpdateStatus(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, guard.Complete)
}

func (s *Server) handleFirstVerify(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, guard.FirstVerify)
}

func (s *Server) handleSecondVerify(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, guard.SecondVerify)
}

// handleTransition answers 200 with per-task outcomes even when every task
// was rejected; only malformed or unauthorized requests fail as a whole.
func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, kind guard.Transition) {
	var req api.TransitionRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	if kind == guard.SecondVerify && !req.RequireFirstVerified {
		s.writeServiceError(w, r, badRequestCode(errors.New("require_first_verified must be true for second verification"), ErrCodeMissingRequired))
		return
	}
	actorID := req.Actor(kind)
	if err := checkActor(r, actorID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.withLimiter(w, r, s.transitionLimiter, "transition", func() {
		result, err := s.tasks.Transition(r.Context(), kind, req.TaskIDs, actorID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	})
}
