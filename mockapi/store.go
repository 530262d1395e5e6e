package mockapi

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/secops-console/dashboard"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/jrsteele09/secops-console/loginevents"
)

// Timestamps are rendered without a zone, as the analytics API does.
const timestampLayout = "2006-01-02T15:04:05"

// highRiskScore is the cut-off for the high_risk_logins statistic.
const highRiskScore = 0.7

type eventRecord struct {
	at    time.Time
	event loginevents.Event
}

type alertRecord struct {
	at    time.Time
	alert dashboard.Alert
}

// Store keeps login events and alerts in memory.
type Store struct {
	lock   sync.RWMutex
	events []eventRecord
	alerts []alertRecord
}

func NewStore() *Store {
	return &Store{}
}

// AlertFilter selects alerts. Nil fields match everything.
type AlertFilter struct {
	Severity *dashboard.Severity
	Resolved *bool
	Limit    int
	Skip     int
}

// EventFilter selects login events. Nil fields match everything.
type EventFilter struct {
	UserID    *string
	IsAnomaly *bool
	Limit     int
	Skip      int
}

// AddEvent stores ev as happening at at, assigning an id when it has none.
func (s *Store) AddEvent(ev loginevents.Event, at time.Time) loginevents.Event {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	ev.Timestamp = formatTimestamp(at)
	s.lock.Lock()
	defer s.lock.Unlock()
	s.events = append(s.events, eventRecord{at: at.UTC(), event: ev})
	return ev
}

// AddAlert stores a as raised at at, assigning an id when it has none.
func (s *Store) AddAlert(a dashboard.Alert, at time.Time) dashboard.Alert {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Timestamp = formatTimestamp(at)
	s.lock.Lock()
	defer s.lock.Unlock()
	s.alerts = append(s.alerts, alertRecord{at: at.UTC(), alert: a})
	return a
}

func (s *Store) Event(id string) (loginevents.Event, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for _, rec := range s.events {
		if rec.event.ID == id {
			return rec.event, nil
		}
	}
	return loginevents.Event{}, cerrors.ErrNotFound
}

// Events returns one page of matching events, newest first, and the number of matches.
func (s *Store) Events(f EventFilter) ([]loginevents.Event, int) {
	s.lock.RLock()
	matched := make([]eventRecord, 0, len(s.events))
	for _, rec := range s.events {
		if f.UserID != nil && rec.event.UserID != *f.UserID {
			continue
		}
		if f.IsAnomaly != nil && rec.event.IsAnomaly != *f.IsAnomaly {
			continue
		}
		matched = append(matched, rec)
	}
	s.lock.RUnlock()

	slices.SortStableFunc(matched, func(a, b eventRecord) int { return b.at.Compare(a.at) })
	page := paginate(matched, f.Skip, f.Limit)
	out := make([]loginevents.Event, len(page))
	for i, rec := range page {
		out[i] = rec.event
	}
	return out, len(matched)
}

// Alerts returns one page of matching alerts, newest first, and the number of matches.
func (s *Store) Alerts(f AlertFilter) ([]dashboard.Alert, int) {
	s.lock.RLock()
	matched := make([]alertRecord, 0, len(s.alerts))
	for _, rec := range s.alerts {
		if f.Severity != nil && rec.alert.Severity != *f.Severity {
			continue
		}
		if f.Resolved != nil && rec.alert.Resolved != *f.Resolved {
			continue
		}
		matched = append(matched, rec)
	}
	s.lock.RUnlock()

	slices.SortStableFunc(matched, func(a, b alertRecord) int { return b.at.Compare(a.at) })
	page := paginate(matched, f.Skip, f.Limit)
	out := make([]dashboard.Alert, len(page))
	for i, rec := range page {
		out[i] = rec.alert
	}
	return out, len(matched)
}

// SetAlertResolved updates one alert. cerrors.ErrNotFound is returned for an unknown id.
func (s *Store) SetAlertResolved(id string, resolved bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i := range s.alerts {
		if s.alerts[i].alert.ID == id {
			s.alerts[i].alert.Resolved = resolved
			return nil
		}
	}
	return cerrors.ErrNotFound
}

// Stats summarises the events since now-hours. Active alerts ignore the window.
func (s *Store) Stats(now time.Time, hours int) dashboard.Stats {
	since := now.Add(-time.Duration(hours) * time.Hour)
	stats := dashboard.Stats{TimeRangeHours: hours}

	s.lock.RLock()
	defer s.lock.RUnlock()

	var riskSum float64
	for _, rec := range s.events {
		if rec.at.Before(since) {
			continue
		}
		stats.TotalLogins++
		riskSum += rec.event.RiskScore
		if rec.event.IsAnomaly {
			stats.AnomalousLogins++
		}
		if rec.event.RiskScore >= highRiskScore {
			stats.HighRiskLogins++
		}
	}
	for _, rec := range s.alerts {
		if !rec.alert.Resolved {
			stats.ActiveAlerts++
		}
	}
	if stats.TotalLogins > 0 {
		stats.AnomalyRate = round3(float64(stats.AnomalousLogins) / float64(stats.TotalLogins))
		stats.AvgRiskScore = round3(riskSum / float64(stats.TotalLogins))
	}
	return stats
}

// Timeline buckets the events since now-hours by hour, oldest first. Empty hours are
// left out.
func (s *Store) Timeline(now time.Time, hours int) []dashboard.TimelinePoint {
	since := now.Add(-time.Duration(hours) * time.Hour)
	buckets := make(map[time.Time]*dashboard.TimelinePoint)

	s.lock.RLock()
	for _, rec := range s.events {
		if rec.at.Before(since) {
			continue
		}
		hour := rec.at.Truncate(time.Hour)
		point, ok := buckets[hour]
		if !ok {
			point = &dashboard.TimelinePoint{Timestamp: formatTimestamp(hour)}
			buckets[hour] = point
		}
		point.TotalLogins++
		if rec.event.IsAnomaly {
			point.AnomalousLogins++
		}
	}
	s.lock.RUnlock()

	hoursSeen := make([]time.Time, 0, len(buckets))
	for h := range buckets {
		hoursSeen = append(hoursSeen, h)
	}
	slices.SortFunc(hoursSeen, func(a, b time.Time) int { return a.Compare(b) })

	timeline := make([]dashboard.TimelinePoint, 0, len(hoursSeen))
	for _, h := range hoursSeen {
		timeline = append(timeline, *buckets[h])
	}
	return timeline
}

// TopRisks ranks the users seen since now-hours by their highest risk score.
func (s *Store) TopRisks(now time.Time, hours, limit int) []dashboard.TopRiskUser {
	since := now.Add(-time.Duration(hours) * time.Hour)
	type agg struct {
		dashboard.TopRiskUser
		riskSum float64
	}
	byUser := make(map[string]*agg)

	s.lock.RLock()
	// Oldest first so the first username seen for a user is kept.
	records := slices.Clone(s.events)
	s.lock.RUnlock()
	slices.SortStableFunc(records, func(a, b eventRecord) int { return a.at.Compare(b.at) })

	for _, rec := range records {
		if rec.at.Before(since) {
			continue
		}
		ev := rec.event
		u, ok := byUser[ev.UserID]
		if !ok {
			u = &agg{TopRiskUser: dashboard.TopRiskUser{UserID: ev.UserID, Username: ev.Username, MaxRiskScore: ev.RiskScore}}
			byUser[ev.UserID] = u
		}
		u.TotalLogins++
		u.riskSum += ev.RiskScore
		u.MaxRiskScore = math.Max(u.MaxRiskScore, ev.RiskScore)
		if ev.IsAnomaly {
			u.AnomalyCount++
		}
	}

	ranked := make([]dashboard.TopRiskUser, 0, len(byUser))
	for _, u := range byUser {
		u.AvgRiskScore = round3(u.riskSum / float64(u.TotalLogins))
		u.MaxRiskScore = round3(u.MaxRiskScore)
		ranked = append(ranked, u.TopRiskUser)
	}
	slices.SortFunc(ranked, func(a, b dashboard.TopRiskUser) int {
		if c := cmp.Compare(b.MaxRiskScore, a.MaxRiskScore); c != 0 {
			return c
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return nil
	}
	items = items[skip:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp accepts RFC 3339 and zone-less ISO 8601 timestamps; the latter are
// read as UTC.
func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02T15:04:05.999999999", raw)
}
