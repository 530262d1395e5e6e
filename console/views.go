package console

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jrsteele09/secops-console/dashboard"
	"github.com/jrsteele09/secops-console/internal/utils"
	"github.com/jrsteele09/secops-console/loginevents"
	"github.com/jrsteele09/secops-console/refresh"
	"github.com/pkg/errors"
)

// MessageView prints a fixed message when mounted.
type MessageView struct {
	out  io.Writer
	text string
}

func NewMessageView(out io.Writer, text string) *MessageView {
	return &MessageView{out: out, text: text}
}

func (v *MessageView) Mount(context.Context) error {
	_, err := fmt.Fprintln(v.out, v.text)
	return err
}

func (v *MessageView) Unmount() {}

// DashboardView keeps the dashboard feeds fresh while it is mounted and prints every
// batch that lands.
type DashboardView struct {
	feeds    dashboard.Feeds
	out      io.Writer
	hours    int
	interval time.Duration
	clock    clock.Clock

	mu    sync.Mutex
	coord *refresh.Coordinator[dashboard.Snapshot]
	write sync.Mutex
}

// DashboardOption defines a function type to modify the DashboardView instance.
type DashboardOption func(*DashboardView)

func WithHours(hours int) DashboardOption {
	return func(v *DashboardView) {
		v.hours = hours
	}
}

func WithRefreshInterval(d time.Duration) DashboardOption {
	return func(v *DashboardView) {
		v.interval = d
	}
}

// WithClock sets the clock refresh timers use (primarily for testing)
func WithClock(clk clock.Clock) DashboardOption {
	return func(v *DashboardView) {
		v.clock = clk
	}
}

func NewDashboardView(feeds dashboard.Feeds, out io.Writer, options ...DashboardOption) *DashboardView {
	v := &DashboardView{
		feeds:    feeds,
		out:      out,
		hours:    dashboard.DefaultHours,
		interval: refresh.DefaultInterval,
		clock:    clock.New(),
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

func (v *DashboardView) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.coord != nil {
		return errors.New("[DashboardView.Mount] already mounted")
	}

	v.coord = refresh.New(dashboard.Loader(v.feeds),
		refresh.WithInterval[dashboard.Snapshot](v.interval),
		refresh.WithClock[dashboard.Snapshot](v.clock),
		refresh.WithOnUpdate(v.render),
	)
	v.print(func(w io.Writer) { fmt.Fprintf(w, "Loading dashboard (%s)...\n", TimeRangeLabel(v.hours)) })
	if err := v.coord.Start(ctx, v.hours); err != nil {
		v.coord = nil
		return err
	}
	return nil
}

// Unmount stops the refresh loop and waits for it to wind down.
func (v *DashboardView) Unmount() {
	v.mu.Lock()
	coord := v.coord
	v.coord = nil
	v.mu.Unlock()

	if coord != nil {
		coord.Stop()
	}
}

// SetHours changes the time range shown.
func (v *DashboardView) SetHours(hours int) error {
	coord, err := v.coordinator()
	if err != nil {
		return err
	}
	if err := coord.SetHours(hours); err != nil {
		return err
	}
	v.mu.Lock()
	v.hours = hours
	v.mu.Unlock()
	return nil
}

// Refresh fetches the feeds again now.
func (v *DashboardView) Refresh() error {
	coord, err := v.coordinator()
	if err != nil {
		return err
	}
	return coord.RefreshNow()
}

// State returns the latest refresh state; the zero value when not mounted.
func (v *DashboardView) State() refresh.State[dashboard.Snapshot] {
	coord, err := v.coordinator()
	if err != nil {
		return refresh.State[dashboard.Snapshot]{}
	}
	return coord.State()
}

func (v *DashboardView) coordinator() (*refresh.Coordinator[dashboard.Snapshot], error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.coord == nil {
		return nil, errors.New("dashboard view is not mounted")
	}
	return v.coord, nil
}

func (v *DashboardView) render(state refresh.State[dashboard.Snapshot]) {
	if state.Loading {
		return
	}
	v.print(func(w io.Writer) { RenderDashboard(w, state) })
}

func (v *DashboardView) print(fn func(io.Writer)) {
	v.write.Lock()
	defer v.write.Unlock()
	fn(v.out)
}

// EventsPageSize is how many login events the events view asks for.
const EventsPageSize = 50

// EventLister is the part of the login events feed the events view reads.
type EventLister interface {
	List(ctx context.Context, query loginevents.Query) (*loginevents.EventsResponse, error)
}

var _ EventLister = (*loginevents.Service)(nil)

// LoginEventsView lists recent login events, optionally only the anomalous or only the
// normal ones. It loads once on mount and again whenever the filter changes.
type LoginEventsView struct {
	events EventLister
	out    io.Writer

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	anomaly *bool
	last    *loginevents.EventsResponse
}

func NewLoginEventsView(events EventLister, out io.Writer) *LoginEventsView {
	return &LoginEventsView{events: events, out: out}
}

// Mount loads the first page. A failed load is shown, not returned, so the view stays
// mounted and can be reloaded.
func (v *LoginEventsView) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ctx != nil {
		return errors.New("[LoginEventsView.Mount] already mounted")
	}
	v.ctx, v.cancel = context.WithCancel(ctx)
	v.load()
	return nil
}

func (v *LoginEventsView) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	v.ctx, v.cancel = nil, nil
}

// SetFilter shows all events for nil, otherwise only events whose anomaly flag
// matches.
func (v *LoginEventsView) SetFilter(anomaly *bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ctx == nil {
		return errors.New("login events view is not mounted")
	}
	v.anomaly = anomaly
	v.load()
	return nil
}

// Reload fetches the current page again.
func (v *LoginEventsView) Reload() error {
	return v.SetFilter(v.filter())
}

// Events returns the last page loaded, or nil.
func (v *LoginEventsView) Events() *loginevents.EventsResponse {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

func (v *LoginEventsView) filter() *bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.anomaly
}

// load runs with mu held.
func (v *LoginEventsView) load() {
	resp, err := v.events.List(v.ctx, loginevents.Query{
		IsAnomaly: v.anomaly,
		Limit:     utils.Ptr(EventsPageSize),
	})
	if err != nil {
		fmt.Fprintf(v.out, "Error: %v\n", err)
		return
	}
	v.last = resp
	fmt.Fprintf(v.out, "=== Login Events: %s ===\n", EventFilterLabel(v.anomaly))
	RenderEvents(v.out, resp.Events)
	fmt.Fprintf(v.out, "%d of %d events\n", len(resp.Events), resp.Total)
}

// EventFilterLabel names an anomaly filter.
func EventFilterLabel(anomaly *bool) string {
	switch {
	case anomaly == nil:
		return "All"
	case *anomaly:
		return "Anomalies only"
	}
	return "Normal only"
}
