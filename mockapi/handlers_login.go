package mockapi

import (
	"net/http"

	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/jrsteele09/secops-console/internal/utils"
	"github.com/jrsteele09/secops-console/loginevents"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// analyzeBody mirrors loginevents.AnalysisRequest with every field optional so that
// missing fields can be reported by name.
type analyzeBody struct {
	UserID     *string         `json:"user_id"`
	Username   *string         `json:"username"`
	IPAddress  *string         `json:"ip_address"`
	DeviceInfo *deviceInfoBody `json:"device_info"`
	Location   *locationBody   `json:"location"`
	Timestamp  *string         `json:"timestamp"`
	Success    *bool           `json:"success"`
}

type deviceInfoBody struct {
	Browser    *string `json:"browser"`
	OS         *string `json:"os"`
	DeviceType *string `json:"device_type"`
}

type locationBody struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
}

// unknownLocation stands in for IP geolocation, which the mock does not perform.
var unknownLocation = loginevents.Location{City: "Unknown", Country: "Unknown"}

func (s *Server) EventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", defaultEventsLimit)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		skip, err := queryInt(r, "skip", 0)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		filter := EventFilter{IsAnomaly: queryBool(r, "is_anomaly"), Limit: limit, Skip: skip}
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			filter.UserID = &userID
		}

		events, total := s.data.Events(filter)
		writeJSON(w, loginevents.EventsResponse{Events: events, Count: len(events), Total: total}, http.StatusOK)
	}
}

func (s *Server) EventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := s.data.Event(r.PathValue("id"))
		if errors.Is(err, cerrors.ErrNotFound) {
			writeError(w, "Login event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, ev, http.StatusOK)
	}
}

func (s *Server) AnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body analyzeBody
		if err := decodeBody(r, &body); err != nil {
			writeJSON(w, errorResponse{Error: "Invalid input", Details: []string{"Malformed JSON body"}}, http.StatusBadRequest)
			return
		}
		if problems := s.validate.ValidateLoginEvent(&body); len(problems) > 0 {
			writeJSON(w, errorResponse{Error: "Invalid input", Details: problems}, http.StatusBadRequest)
			return
		}

		at := s.nowTime().UTC()
		if body.Timestamp != nil {
			at, _ = parseTimestamp(*body.Timestamp)
		}
		loc := unknownLocation
		if body.Location != nil {
			loc = loginevents.Location{
				Latitude:  *body.Location.Latitude,
				Longitude: *body.Location.Longitude,
				City:      body.Location.City,
				Country:   body.Location.Country,
			}
		}
		success := body.Success == nil || *body.Success

		var rules fixedRules
		v := rules.score(at, loc, success)

		ev := s.data.AddEvent(loginevents.Event{
			UserID:    *body.UserID,
			Username:  *body.Username,
			IPAddress: *body.IPAddress,
			Location:  loc,
			DeviceInfo: loginevents.DeviceInfo{
				Browser:    utils.Value(body.DeviceInfo.Browser),
				OS:         utils.Value(body.DeviceInfo.OS),
				DeviceType: utils.Value(body.DeviceInfo.DeviceType),
			},
			Success:        success,
			RiskScore:      v.score,
			IsAnomaly:      v.anomaly,
			AnomalyReasons: v.reasons,
		}, at)

		resp := loginevents.AnalysisResponse{
			LoginEventID: ev.ID,
			IsAnomaly:    v.anomaly,
			RiskScore:    v.score,
			Severity:     "normal",
			Reasons:      v.reasons,
			Message:      "Login analyzed successfully",
		}
		if v.anomaly {
			alert := s.data.AddAlert(newAlert(ev, v, false), s.nowTime())
			resp.AlertID = alert.ID
			resp.Severity = string(severityFor(v.score))
			log.Debug().Str("alert_id", alert.ID).Str("username", ev.Username).Float64("risk_score", v.score).Msg("alert raised")
		}
		writeJSON(w, resp, http.StatusOK)
	}
}
