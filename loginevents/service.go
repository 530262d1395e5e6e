// Package loginevents reads recorded login events and submits logins for analysis.
package loginevents

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/secops-console/apiclient"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/pkg/errors"
)

const (
	RouteEvents  = "/api/login/events"
	RouteAnalyze = "/api/login/analyze"
)

type API interface {
	Get(ctx context.Context, path string, query apiclient.Query, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Query filters GET /api/login/events. Nil fields are left out of the URL.
type Query struct {
	UserID    *string
	IsAnomaly *bool
	Limit     *int
	Skip      *int
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func (s *Service) List(ctx context.Context, query Query) (*EventsResponse, error) {
	var q apiclient.Query
	q.OptString("user_id", query.UserID).
		OptBool("is_anomaly", query.IsAnomaly).
		OptInt("limit", query.Limit).
		OptInt("skip", query.Skip)

	var resp EventsResponse
	if err := s.api.Get(ctx, RouteEvents, q, &resp); err != nil {
		return nil, errors.Wrap(err, "[loginevents.List]")
	}
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, eventID string) (*Event, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, errors.Wrap(cerrors.ErrInvalidRequest, "event id is required")
	}
	var event Event
	if err := s.api.Get(ctx, RouteEvents+"/"+url.PathEscape(eventID), apiclient.Query{}, &event); err != nil {
		return nil, errors.Wrap(err, "[loginevents.Get]")
	}
	return &event, nil
}

func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	if req.UserID == "" || req.Username == "" || req.IPAddress == "" {
		return nil, errors.Wrap(cerrors.ErrInvalidRequest, "user_id, username and ip_address are required")
	}
	var resp AnalysisResponse
	if err := s.api.Post(ctx, RouteAnalyze, req, &resp); err != nil {
		return nil, errors.Wrap(err, "[loginevents.Analyze]")
	}
	return &resp, nil
}
