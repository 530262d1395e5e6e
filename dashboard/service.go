// Package dashboard reads the dashboard feeds of the analytics API and assembles
// them into refresh batches.
package dashboard

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/secops-console/apiclient"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/pkg/errors"
)

const (
	RouteStats    = "/api/dashboard/stats"
	RouteAlerts   = "/api/dashboard/alerts"
	RouteTimeline = "/api/dashboard/timeline"
	RouteTopRisks = "/api/dashboard/top-risks"
)

// API is the part of apiclient.Client the feeds need.
type API interface {
	Get(ctx context.Context, path string, query apiclient.Query, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// AlertQuery filters GET /api/dashboard/alerts. Nil fields are left out of the URL.
type AlertQuery struct {
	Severity *Severity
	Resolved *bool
	Limit    *int
	Skip     *int
}

// TopRisksQuery filters GET /api/dashboard/top-risks. Nil fields are left out of the URL.
type TopRisksQuery struct {
	Limit *int
	Hours *int
}

// Service reads the dashboard feeds.
type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func (s *Service) GetStats(ctx context.Context, hours int) (*Stats, error) {
	if hours <= 0 {
		return nil, cerrors.ErrInvalidTimeRange
	}
	var q apiclient.Query
	q.Int("hours", hours)

	var stats Stats
	if err := s.api.Get(ctx, RouteStats, q, &stats); err != nil {
		return nil, errors.Wrap(err, "[dashboard.GetStats]")
	}
	return &stats, nil
}

func (s *Service) GetAlerts(ctx context.Context, query AlertQuery) (*AlertsResponse, error) {
	var q apiclient.Query
	if query.Severity != nil {
		severity := string(*query.Severity)
		q.OptString("severity", &severity)
	}
	q.OptBool("resolved", query.Resolved).OptInt("limit", query.Limit).OptInt("skip", query.Skip)

	var resp AlertsResponse
	if err := s.api.Get(ctx, RouteAlerts, q, &resp); err != nil {
		return nil, errors.Wrap(err, "[dashboard.GetAlerts]")
	}
	return &resp, nil
}

// UpdateAlert sets the resolved flag of one alert.
func (s *Service) UpdateAlert(ctx context.Context, alertID string, resolved bool) (*MessageResponse, error) {
	if strings.TrimSpace(alertID) == "" {
		return nil, errors.Wrap(cerrors.ErrInvalidRequest, "alert id is required")
	}
	var resp MessageResponse
	path := RouteAlerts + "/" + url.PathEscape(alertID)
	if err := s.api.Put(ctx, path, UpdateAlertRequest{Resolved: resolved}, &resp); err != nil {
		return nil, errors.Wrap(err, "[dashboard.UpdateAlert]")
	}
	return &resp, nil
}

func (s *Service) GetTimeline(ctx context.Context, hours int) (*TimelineResponse, error) {
	if hours <= 0 {
		return nil, cerrors.ErrInvalidTimeRange
	}
	var q apiclient.Query
	q.Int("hours", hours)

	var resp TimelineResponse
	if err := s.api.Get(ctx, RouteTimeline, q, &resp); err != nil {
		return nil, errors.Wrap(err, "[dashboard.GetTimeline]")
	}
	return &resp, nil
}

func (s *Service) GetTopRisks(ctx context.Context, query TopRisksQuery) (*TopRisksResponse, error) {
	var q apiclient.Query
	q.OptInt("limit", query.Limit).OptInt("hours", query.Hours)

	var resp TopRisksResponse
	if err := s.api.Get(ctx, RouteTopRisks, q, &resp); err != nil {
		return nil, errors.Wrap(err, "[dashboard.GetTopRisks]")
	}
	return &resp, nil
}
