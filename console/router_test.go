package console_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jrsteele09/secops-console/auth"
	"github.com/jrsteele09/secops-console/console"
	"github.com/jrsteele09/secops-console/guard"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/jrsteele09/secops-console/session"
	"github.com/jrsteele09/secops-console/users"
	"github.com/stretchr/testify/require"
)

var alice = &users.Profile{UserID: "u1", Username: "alice", Role: users.RoleAnalyst}

type stateBox struct {
	mu    sync.Mutex
	state session.State
}

func (b *stateBox) State() session.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *stateBox) set(s session.State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

var (
	authenticated   = session.State{User: alice, Token: "T1", IsAuthenticated: true}
	unauthenticated = session.State{}
	bootstrapping   = session.State{IsLoading: true}
)

type countingView struct {
	name     string
	mu       sync.Mutex
	mounts   int
	unmounts int
}

func (v *countingView) Mount(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounts++
	return nil
}

func (v *countingView) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.unmounts++
}

func (v *countingView) counts() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounts, v.unmounts
}

type fixture struct {
	router *console.Router
	state  *stateBox
	views  map[string]*countingView
}

func newFixture(initial session.State) *fixture {
	f := &fixture{state: &stateBox{state: initial}, views: make(map[string]*countingView)}
	f.router = console.NewRouter(f.state)
	factory := func(name string) console.ViewFactory {
		return func() console.View {
			v := &countingView{name: name}
			f.views[name] = v
			return v
		}
	}
	f.router.Handle(console.RouteLogin, factory("login"))
	f.router.Handle(console.RouteRegister, factory("register"))
	f.router.HandleProtected(console.RouteDashboard, factory("dashboard"))
	f.router.HandleProtected(console.RouteAlerts, factory("alerts"))
	f.router.HandleProtected(console.RouteLoginEvents, factory("events"))
	return f
}

func TestRouter_Navigate(t *testing.T) {
	ctx := context.Background()

	t.Run("Root and unknown paths lead to the dashboard", func(t *testing.T) {
		for _, path := range []string{"/", "/nope", ""} {
			f := newFixture(authenticated)
			res, err := f.router.Navigate(ctx, path)
			require.NoError(t, err)
			require.Equal(t, console.RouteDashboard, res.Path)
			require.Equal(t, guard.Render, res.Outcome)
			require.Equal(t, path, res.Requested)
		}
	})

	t.Run("Unauthenticated is redirected to login", func(t *testing.T) {
		f := newFixture(unauthenticated)
		res, err := f.router.Navigate(ctx, console.RouteAlerts)
		require.NoError(t, err)
		require.Equal(t, console.RouteLogin, res.Path)
		require.Same(t, f.views["login"], res.View)
		require.NotContains(t, f.views, "alerts")
	})

	t.Run("Bootstrapping shows loading and mounts nothing", func(t *testing.T) {
		f := newFixture(bootstrapping)
		res, err := f.router.Navigate(ctx, console.RouteDashboard)
		require.NoError(t, err)
		require.Equal(t, guard.Loading, res.Outcome)
		require.Nil(t, res.View)
		require.Empty(t, f.views)
	})

	t.Run("Public routes need no session", func(t *testing.T) {
		f := newFixture(bootstrapping)
		res, err := f.router.Navigate(ctx, console.RouteRegister)
		require.NoError(t, err)
		require.Equal(t, guard.Render, res.Outcome)
		require.Equal(t, console.RouteRegister, res.Path)
	})

	t.Run("Switching views unmounts the previous one", func(t *testing.T) {
		f := newFixture(authenticated)
		_, err := f.router.Navigate(ctx, console.RouteDashboard)
		require.NoError(t, err)
		_, err = f.router.Navigate(ctx, console.RouteDashboard)
		require.NoError(t, err)
		mounts, unmounts := f.views["dashboard"].counts()
		require.Equal(t, 1, mounts)
		require.Zero(t, unmounts)

		_, err = f.router.Navigate(ctx, console.RouteLoginEvents)
		require.NoError(t, err)
		_, unmounts = f.views["dashboard"].counts()
		require.Equal(t, 1, unmounts)

		path, view := f.router.Current()
		require.Equal(t, console.RouteLoginEvents, path)
		require.Same(t, f.views["events"], view)

		f.router.Close()
		_, unmounts = f.views["events"].counts()
		require.Equal(t, 1, unmounts)
	})

	t.Run("No routes", func(t *testing.T) {
		r := console.NewRouter(&stateBox{state: authenticated})
		_, err := r.Navigate(ctx, "/")
		require.ErrorIs(t, err, cerrors.ErrRouteNotFound)
	})
}

func TestRouter_Reevaluate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(bootstrapping)

	res, err := f.router.Reevaluate(ctx)
	require.NoError(t, err)
	require.Empty(t, res.Path)

	res, err = f.router.Navigate(ctx, console.RouteDashboard)
	require.NoError(t, err)
	require.Equal(t, guard.Loading, res.Outcome)

	f.state.set(authenticated)
	res, err = f.router.Reevaluate(ctx)
	require.NoError(t, err)
	require.Equal(t, console.RouteDashboard, res.Path)
	require.Equal(t, guard.Render, res.Outcome)

	f.state.set(unauthenticated)
	res, err = f.router.Reevaluate(ctx)
	require.NoError(t, err)
	require.Equal(t, console.RouteLogin, res.Path)
	_, unmounts := f.views["dashboard"].counts()
	require.Equal(t, 1, unmounts)
}

// storedAuth restores a fixed session and accepts logout.
type storedAuth struct{}

func (storedAuth) Authenticate(context.Context, string, string) (*auth.LoginResponse, error) {
	return nil, cerrors.ErrInvalidCredentials
}
func (storedAuth) Persist(context.Context, *auth.LoginResponse) error { return nil }
func (storedAuth) Register(context.Context, string, string, string) (*auth.RegisterResponse, error) {
	return nil, cerrors.ErrInvalidRequest
}
func (storedAuth) Logout(context.Context) {}
func (storedAuth) StoredSession(context.Context) (string, *users.Profile) {
	return "T1", alice
}

func TestRouter_WatchFollowsSession(t *testing.T) {
	ctx := context.Background()
	m, err := session.NewManager(storedAuth{})
	require.NoError(t, err)

	r := console.NewRouter(m)
	dash := &countingView{}
	r.Handle(console.RouteLogin, func() console.View { return &countingView{} })
	r.HandleProtected(console.RouteDashboard, func() console.View { return dash })

	stop := r.Watch(ctx, m)
	defer stop()

	res, err := r.Navigate(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, guard.Loading, res.Outcome)

	m.Bootstrap(ctx)
	path, view := r.Current()
	require.Equal(t, console.RouteDashboard, path)
	require.Same(t, dash, view)

	m.Logout(ctx)
	path, _ = r.Current()
	require.Equal(t, console.RouteLogin, path)
	_, unmounts := dash.counts()
	require.Equal(t, 1, unmounts)
}
