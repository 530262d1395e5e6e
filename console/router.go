// Package console maps navigation paths onto views, consulting the route guard for
// the protected ones, and renders the views as plain text.
package console

import (
	"context"
	"sync"

	"github.com/jrsteele09/secops-console/guard"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/jrsteele09/secops-console/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Route path constants
const (
	RouteLogin       = guard.LoginPath
	RouteRegister    = "/register"
	RouteDashboard   = "/dashboard"
	RouteLoginEvents = "/login-events"
	RouteAlerts      = "/alerts"
	RouteRoot        = "/"
)

// DefaultPath is where the root and unknown paths lead.
const DefaultPath = RouteDashboard

// Guarded routes can redirect to login, which is public, so a resolution never needs
// more than a couple of hops.
const maxRedirects = 4

// View is something the router shows. Mount is called when the view becomes current
// and Unmount when it stops being current.
type View interface {
	Mount(ctx context.Context) error
	Unmount()
}

type ViewFactory func() View

// StateSource yields the current session state.
type StateSource interface {
	State() session.State
}

type route struct {
	protected bool
	factory   ViewFactory
}

// Resolution is where a navigation ended up.
type Resolution struct {
	Requested string
	Path      string
	Outcome   guard.Outcome
	View      View
}

// Router owns the single mounted view.
type Router struct {
	sessions StateSource
	routes   map[string]route

	mu        sync.Mutex
	requested string
	path      string
	view      View
}

func NewRouter(sessions StateSource) *Router {
	return &Router{sessions: sessions, routes: make(map[string]route)}
}

// Handle registers a public view.
func (r *Router) Handle(path string, factory ViewFactory) {
	r.routes[path] = route{factory: factory}
}

// HandleProtected registers a view that is only shown to an authenticated session.
func (r *Router) HandleProtected(path string, factory ViewFactory) {
	r.routes[path] = route{protected: true, factory: factory}
}

// Navigate resolves path, unmounting the previous view and mounting the new one when
// they differ. While the session is bootstrapping a protected path resolves to
// guard.Loading and nothing is mounted.
func (r *Router) Navigate(ctx context.Context, path string) (Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requested = path
	return r.resolve(ctx, path)
}

// Reevaluate resolves the last requested path again. It is meant to run after every
// session change so a protected view disappears on logout and appears once
// bootstrapping ends.
func (r *Router) Reevaluate(ctx context.Context) (Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.requested == "" {
		return Resolution{}, nil
	}
	return r.resolve(ctx, r.requested)
}

// Watch re-evaluates the current path on every session change until the returned
// function is called.
func (r *Router) Watch(ctx context.Context, m *session.Manager) (stop func()) {
	return m.Subscribe(func(session.State) {
		if _, err := r.Reevaluate(ctx); err != nil {
			log.Err(err).Msg("Router.Watch: failed to re-evaluate route")
		}
	})
}

// Current returns the resolved path and the mounted view, if any.
func (r *Router) Current() (string, View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path, r.view
}

// Close unmounts the current view.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmount()
	r.path = ""
}

func (r *Router) resolve(ctx context.Context, requested string) (Resolution, error) {
	target := requested
	for range maxRedirects {
		rt, ok := r.routes[target]
		if !ok {
			target = DefaultPath
			continue
		}

		outcome := guard.Render
		if rt.protected {
			d := guard.Decide(r.sessions.State())
			switch d.Outcome {
			case guard.Loading:
				r.unmount()
				r.path = target
				return Resolution{Requested: requested, Path: target, Outcome: guard.Loading}, nil
			case guard.Redirect:
				target = d.RedirectTo
				continue
			}
		}

		if r.view != nil && r.path == target {
			return Resolution{Requested: requested, Path: target, Outcome: outcome, View: r.view}, nil
		}

		r.unmount()
		view := rt.factory()
		if err := view.Mount(ctx); err != nil {
			r.path = ""
			return Resolution{}, errors.Wrapf(err, "[Router.Navigate] mount %s", target)
		}
		r.view = view
		r.path = target
		log.Debug().Str("requested", requested).Str("path", target).Msg("view mounted")
		return Resolution{Requested: requested, Path: target, Outcome: outcome, View: view}, nil
	}
	return Resolution{}, errors.Wrapf(cerrors.ErrRouteNotFound, "%s", requested)
}

func (r *Router) unmount() {
	if r.view != nil {
		r.view.Unmount()
		r.view = nil
	}
}
