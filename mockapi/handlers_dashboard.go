package mockapi

import (
	"net/http"

	"github.com/jrsteele09/secops-console/dashboard"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/pkg/errors"
)

const (
	defaultHours       = 24
	defaultAlertLimit  = 20
	defaultTopRisks    = 10
	defaultEventsLimit = 50
)

func (s *Server) hoursParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	hours, err := queryInt(r, "hours", defaultHours)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	if hours <= 0 {
		writeError(w, "Invalid hours", http.StatusBadRequest)
		return 0, false
	}
	return hours, true
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, ok := s.hoursParam(w, r)
		if !ok {
			return
		}
		writeJSON(w, s.data.Stats(s.nowTime(), hours), http.StatusOK)
	}
}

func (s *Server) AlertsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", defaultAlertLimit)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		skip, err := queryInt(r, "skip", 0)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		filter := AlertFilter{Resolved: queryBool(r, "resolved"), Limit: limit, Skip: skip}
		if severity := r.URL.Query().Get("severity"); severity != "" {
			sev := dashboard.Severity(severity)
			filter.Severity = &sev
		}

		alerts, total := s.data.Alerts(filter)
		writeJSON(w, dashboard.AlertsResponse{Alerts: alerts, Count: len(alerts), Total: total}, http.StatusOK)
	}
}

func (s *Server) UpdateAlertHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Resolved *bool `json:"resolved"`
		}
		if err := decodeBody(r, &body); err != nil || body.Resolved == nil {
			writeError(w, "No fields to update", http.StatusBadRequest)
			return
		}

		err := s.data.SetAlertResolved(r.PathValue("id"), *body.Resolved)
		if errors.Is(err, cerrors.ErrNotFound) {
			writeError(w, "Alert not found", http.StatusNotFound)
			return
		}
		writeJSON(w, dashboard.MessageResponse{Message: "Alert updated successfully"}, http.StatusOK)
	}
}

func (s *Server) TimelineHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, ok := s.hoursParam(w, r)
		if !ok {
			return
		}
		writeJSON(w, dashboard.TimelineResponse{Timeline: s.data.Timeline(s.nowTime(), hours)}, http.StatusOK)
	}
}

func (s *Server) TopRisksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, ok := s.hoursParam(w, r)
		if !ok {
			return
		}
		limit, err := queryInt(r, "limit", defaultTopRisks)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, dashboard.TopRisksResponse{TopRisks: s.data.TopRisks(s.nowTime(), hours, limit)}, http.StatusOK)
	}
}
