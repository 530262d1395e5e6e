package console_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jrsteele09/secops-console/console"
	"github.com/jrsteele09/secops-console/dashboard"
	"github.com/jrsteele09/secops-console/loginevents"
	"github.com/jrsteele09/secops-console/refresh"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type stubFeeds struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (f *stubFeeds) GetStats(_ context.Context, hours int) (*dashboard.Stats, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("stats unavailable")
	}
	return &dashboard.Stats{TimeRangeHours: hours, TotalLogins: 42, AnomalyRate: 0.25}, nil
}

func (f *stubFeeds) GetAlerts(context.Context, dashboard.AlertQuery) (*dashboard.AlertsResponse, error) {
	return &dashboard.AlertsResponse{Alerts: []dashboard.Alert{{ID: "a1", Severity: dashboard.SeverityHigh, Username: "alice"}}}, nil
}

func (f *stubFeeds) GetTimeline(context.Context, int) (*dashboard.TimelineResponse, error) {
	return &dashboard.TimelineResponse{Timeline: []dashboard.TimelinePoint{{Timestamp: "2026-01-10T10:00:00", TotalLogins: 4}}}, nil
}

func (f *stubFeeds) GetTopRisks(context.Context, dashboard.TopRisksQuery) (*dashboard.TopRisksResponse, error) {
	return &dashboard.TopRisksResponse{TopRisks: []dashboard.TopRiskUser{{Username: "alice", MaxRiskScore: 0.9}}}, nil
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestDashboardView(t *testing.T) {
	ctx := context.Background()
	feeds := &stubFeeds{}
	out := &syncBuffer{}
	view := console.NewDashboardView(feeds, out, console.WithClock(clock.NewMock()), console.WithRefreshInterval(time.Minute))

	require.Error(t, view.Refresh())
	require.Equal(t, refresh.State[dashboard.Snapshot]{}, view.State())

	require.NoError(t, view.Mount(ctx))
	require.Error(t, view.Mount(ctx))
	require.Eventually(t, func() bool { return view.State().HasData }, waitFor, tick)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Security Dashboard: Last 24 Hours")
	}, waitFor, tick)
	require.Contains(t, out.String(), "Loading dashboard (Last 24 Hours)...")

	require.NoError(t, view.SetHours(6))
	require.Eventually(t, func() bool { return view.State().Data.Hours == 6 }, waitFor, tick)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Security Dashboard: Last 6 Hours")
	}, waitFor, tick)

	feeds.fail.Store(true)
	require.NoError(t, view.Refresh())
	require.Eventually(t, func() bool { return view.State().Err != nil }, waitFor, tick)
	require.Equal(t, 6, view.State().Data.Hours)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Refresh failed, showing previous data")
	}, waitFor, tick)

	view.Unmount()
	view.Unmount()
	calls := feeds.calls.Load()
	require.Error(t, view.SetHours(24))
	require.Never(t, func() bool { return feeds.calls.Load() != calls }, 50*time.Millisecond, tick)
}

func TestDashboardViewFirstBatchFailure(t *testing.T) {
	feeds := &stubFeeds{}
	feeds.fail.Store(true)
	out := &syncBuffer{}
	view := console.NewDashboardView(feeds, out, console.WithClock(clock.NewMock()), console.WithHours(168))

	require.NoError(t, view.Mount(context.Background()))
	defer view.Unmount()

	require.Eventually(t, func() bool { return view.State().Err != nil }, waitFor, tick)
	require.False(t, view.State().HasData)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Error: ") }, waitFor, tick)
	require.NotContains(t, out.String(), "Security Dashboard")
}

type stubEvents struct {
	mu      sync.Mutex
	queries []loginevents.Query
	err     error
}

func (s *stubEvents) List(_ context.Context, query loginevents.Query) (*loginevents.EventsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	events := []loginevents.Event{
		{ID: "e1", Username: "alice", IsAnomaly: true, Location: loginevents.Location{City: "Beijing", Country: "China"}},
		{ID: "e2", Username: "bob", Location: loginevents.Location{City: "Seattle", Country: "USA"}},
	}
	if query.IsAnomaly != nil {
		events = slices.DeleteFunc(events, func(e loginevents.Event) bool { return e.IsAnomaly != *query.IsAnomaly })
	}
	return &loginevents.EventsResponse{Events: events, Count: len(events), Total: len(events)}, nil
}

func (s *stubEvents) lastQuery() loginevents.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

func TestLoginEventsView(t *testing.T) {
	ctx := context.Background()
	events := &stubEvents{}
	out := &syncBuffer{}
	view := console.NewLoginEventsView(events, out)

	require.Error(t, view.SetFilter(nil))

	require.NoError(t, view.Mount(ctx))
	require.Error(t, view.Mount(ctx))
	q := events.lastQuery()
	require.Nil(t, q.IsAnomaly)
	require.Equal(t, console.EventsPageSize, *q.Limit)
	require.Len(t, view.Events().Events, 2)
	require.Contains(t, out.String(), "=== Login Events: All ===")
	require.Contains(t, out.String(), "Beijing, China")

	t.Run("Anomalies only", func(t *testing.T) {
		anomaly := true
		require.NoError(t, view.SetFilter(&anomaly))
		require.True(t, *events.lastQuery().IsAnomaly)
		require.Equal(t, "e1", view.Events().Events[0].ID)
		require.Contains(t, out.String(), "=== Login Events: Anomalies only ===")
	})

	t.Run("Normal only", func(t *testing.T) {
		normal := false
		require.NoError(t, view.SetFilter(&normal))
		require.False(t, *events.lastQuery().IsAnomaly)
		require.Equal(t, "e2", view.Events().Events[0].ID)
		require.Contains(t, out.String(), "=== Login Events: Normal only ===")
	})

	t.Run("Failed reload keeps the view mounted", func(t *testing.T) {
		events.mu.Lock()
		events.err = errors.New("events unavailable")
		events.mu.Unlock()
		require.NoError(t, view.Reload())
		require.Contains(t, out.String(), "Error: events unavailable")
		require.False(t, *events.lastQuery().IsAnomaly)
		require.Equal(t, "e2", view.Events().Events[0].ID)
	})

	view.Unmount()
	require.Error(t, view.Reload())
}

func TestRegisterRoutes(t *testing.T) {
	ctx := context.Background()
	out := &syncBuffer{}
	state := &stateBox{state: unauthenticated}
	r := console.NewRouter(state)
	console.RegisterRoutes(r, out, &stubFeeds{}, &stubEvents{}, console.WithClock(clock.NewMock()))
	defer r.Close()

	res, err := r.Navigate(ctx, console.RouteAlerts)
	require.NoError(t, err)
	require.Equal(t, console.RouteLogin, res.Path)
	require.Contains(t, out.String(), "console login")

	state.set(authenticated)
	res, err = r.Navigate(ctx, console.RouteLoginEvents)
	require.NoError(t, err)
	require.Equal(t, console.RouteLoginEvents, res.Path)
	_, ok := res.View.(*console.LoginEventsView)
	require.True(t, ok)
	require.Contains(t, out.String(), "=== Login Events: All ===")
	require.NotContains(t, out.String(), "Loading dashboard")

	res, err = r.Navigate(ctx, console.RouteAlerts)
	require.NoError(t, err)
	_, ok = res.View.(*console.DashboardView)
	require.True(t, ok)
}
