// Package session holds the console's single view of who is signed in.
//
// A Manager starts in the bootstrapping phase, settles into authenticated or
// unauthenticated once the credential store has been read, and from then on only
// moves through Login, Register and Logout.
package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/secops-console/auth"
	"github.com/jrsteele09/secops-console/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Phase is the coarse position of the session state machine.
type Phase int

const (
	PhaseBootstrapping Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrapping:
		return "bootstrapping"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is a snapshot of the session. IsAuthenticated is true exactly when both Token
// and User are set.
type State struct {
	User            *users.Profile
	Token           string
	IsAuthenticated bool
	IsLoading       bool
}

// Phase derives the machine phase from the snapshot.
func (s State) Phase() Phase {
	switch {
	case s.IsLoading:
		return PhaseBootstrapping
	case s.IsAuthenticated:
		return PhaseAuthenticated
	default:
		return PhaseUnauthenticated
	}
}

// Authenticator is the part of auth.Service the manager drives.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*auth.LoginResponse, error)
	Persist(ctx context.Context, resp *auth.LoginResponse) error
	Register(ctx context.Context, username, password, email string) (*auth.RegisterResponse, error)
	Logout(ctx context.Context)
	StoredSession(ctx context.Context) (string, *users.Profile)
}

// Manager owns the session state. Network calls run outside the lock; the store write
// and the state change that follow them happen together under it, so transitions land
// in the order they complete.
type Manager struct {
	svc Authenticator

	mu          sync.Mutex
	state       State
	version     uint64
	subscribers map[int]func(State)
	nextSubID   int

	notifyMu  sync.Mutex
	delivered uint64
}

func NewManager(svc Authenticator) (*Manager, error) {
	if svc == nil {
		return nil, errors.New("[NewManager] authenticator is required")
	}
	return &Manager{
		svc:         svc,
		state:       State{IsLoading: true},
		subscribers: make(map[int]func(State)),
	}, nil
}

// Bootstrap reads the credential store once and leaves the bootstrapping phase. The
// stored token is not checked against the server. Calls after the manager has left
// bootstrapping do nothing.
func (m *Manager) Bootstrap(ctx context.Context) State {
	m.mu.Lock()
	if !m.state.IsLoading {
		defer m.mu.Unlock()
		return m.state
	}

	token, user := m.svc.StoredSession(ctx)
	next := State{}
	if token != "" && user != nil {
		next = State{User: user, Token: token, IsAuthenticated: true}
	}
	log.Debug().Str("phase", next.Phase().String()).Msg("session bootstrapped")
	return m.commit(next)
}

// Login authenticates and, on success, persists and adopts the new session. On failure
// the server's error is returned unchanged and neither the store nor the state change.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.svc.Authenticate(ctx, username, password)
	if err != nil {
		log.Debug().Err(err).Str("username", username).Msg("login rejected")
		return err
	}

	m.mu.Lock()
	if err := m.svc.Persist(ctx, resp); err != nil {
		m.mu.Unlock()
		log.Err(err).Msg("Login: failed to persist session")
		return err
	}
	user := resp.User
	m.commit(State{User: &user, Token: resp.Token, IsAuthenticated: true})
	return nil
}

// Register creates the account and then logs in with the same credentials. If the
// follow-up login fails its error is returned.
func (m *Manager) Register(ctx context.Context, username, password, email string) error {
	if _, err := m.svc.Register(ctx, username, password, email); err != nil {
		log.Debug().Err(err).Str("username", username).Msg("registration rejected")
		return err
	}
	return m.Login(ctx, username, password)
}

// Logout clears the store and the state. It always succeeds.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.svc.Logout(ctx)
	m.commit(State{})
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to be called after state changes. Calls arrive one at a time
// in commit order; a state that was replaced before its notification ran is skipped, so
// the last call always carries the current state. fn may read State but must not start
// a transition. The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers, id)
			m.mu.Unlock()
		})
	}
}

// commit stores next, releases the lock held by the caller and notifies subscribers.
func (m *Manager) commit(next State) State {
	m.state = next
	m.version++
	version := m.version
	subs := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	if version <= m.delivered {
		return next
	}
	m.delivered = version
	for _, fn := range subs {
		fn(next)
	}
	return next
}
