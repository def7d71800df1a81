package web

import (
	"net/http"

	"github.com/emiliopalmerini/mclass/internal/web/templates"
)

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := s.analytics.ClassReport(ctx)
	if err != nil {
		s.renderError(ctx, w, statusFor(err), err.Error())
		return
	}

	s.render(ctx, w, http.StatusOK, templates.SessionsPage(buildSessionsData(report)))
}

func (s *Server) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	detail, err := s.analytics.SessionDetail(ctx, id)
	if err != nil {
		s.renderError(ctx, w, statusFor(err), err.Error())
		return
	}
	if detail == nil {
		s.renderError(ctx, w, http.StatusNotFound, "Session "+id+" does not exist")
		return
	}

	s.render(ctx, w, http.StatusOK, templates.SessionPage(buildSessionData(detail)))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")

	sessions, err := s.analytics.RecentSessions(ctx)
	if err != nil {
		s.renderError(ctx, w, statusFor(err), err.Error())
		return
	}
	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.SessionID)
	}

	if a == "" || b == "" {
		s.render(ctx, w, http.StatusOK, templates.ComparePage(ids, a, b, nil))
		return
	}

	cmp, err := s.analytics.CompareSessions(ctx, a, b)
	if err != nil {
		s.renderError(ctx, w, statusFor(err), err.Error())
		return
	}

	s.render(ctx, w, http.StatusOK, templates.ComparePage(ids, a, b, buildCompareData(cmp)))
}

func (s *Server) handleAPISessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.analytics.RecentSessions(r.Context())
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	detail, err := s.analytics.SessionDetail(r.Context(), id)
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	if detail == nil {
		writeJSONError(w, http.StatusNotFound, "session not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleAPIAggregate(w http.ResponseWriter, r *http.Request) {
	report, err := s.analytics.ClassReport(r.Context())
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report.Aggregate)
}

func (s *Server) handleAPICompare(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		writeJSONError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}

	cmp, err := s.analytics.CompareSessions(r.Context(), a, b)
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
