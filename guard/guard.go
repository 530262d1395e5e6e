// Package guard decides whether a protected view may be shown for a session state.
package guard

import (
	"net/http"

	"github.com/jrsteele09/secops-console/session"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

type Outcome int

const (
	Loading Outcome = iota
	Render
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Render:
		return "render"
	default:
		return "redirect"
	}
}

type Decision struct {
	Outcome    Outcome
	RedirectTo string
}

// Decide is a pure function of the session state.
func Decide(s session.State) Decision {
	switch {
	case s.IsLoading:
		return Decision{Outcome: Loading}
	case s.IsAuthenticated:
		return Decision{Outcome: Render}
	default:
		return Decision{Outcome: Redirect, RedirectTo: LoginPath}
	}
}

// StateFunc yields the current session state.
type StateFunc func() session.State

// Protect wraps next so that it only runs for an authenticated session. While the
// session is bootstrapping the client is asked to retry; otherwise it is redirected to
// the login path.
func Protect(state StateFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			d := Decide(state())
			switch d.Outcome {
			case Render:
				next(w, r)
			case Loading:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session loading", http.StatusServiceUnavailable)
			default:
				http.Redirect(w, r, d.RedirectTo, http.StatusSeeOther)
			}
		}
	}
}
