package console

import (
	"io"

	"github.com/jrsteele09/secops-console/dashboard"
)

const (
	loginMessage    = "Sign in with: console login -u <username>"
	registerMessage = "Create an account with: console register -u <username> [-email <address>]"
)

// RegisterRoutes installs the console's standard route table on r. The alerts path
// shows the dashboard.
func RegisterRoutes(r *Router, out io.Writer, feeds dashboard.Feeds, events EventLister, options ...DashboardOption) {
	r.Handle(RouteLogin, func() View { return NewMessageView(out, loginMessage) })
	r.Handle(RouteRegister, func() View { return NewMessageView(out, registerMessage) })

	newDashboard := func() View { return NewDashboardView(feeds, out, options...) }
	r.HandleProtected(RouteDashboard, newDashboard)
	r.HandleProtected(RouteLoginEvents, func() View { return NewLoginEventsView(events, out) })
	r.HandleProtected(RouteAlerts, newDashboard)
}
