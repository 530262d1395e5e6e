package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/jrsteele09/secops-console/console"
	"github.com/jrsteele09/secops-console/dashboard"
	"github.com/jrsteele09/secops-console/guard"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/jrsteele09/secops-console/internal/utils"
	"github.com/jrsteele09/secops-console/loginevents"
	"github.com/pkg/errors"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":    loginCmd,
	"register": registerCmd,
	"logout":   logoutCmd,
	"whoami":   whoamiCmd,
	"verify":   verifyCmd,
	"open":     openCmd,
	"alerts":   alertsCmd,
	"resolve":  resolveCmd,
	"events":   eventsCmd,
	"analyze":  analyzeCmd,
}

func loginCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pass, err := a.password(*password)
	if err != nil {
		return err
	}
	if err := a.sessions.Login(ctx, *username, pass); err != nil {
		return err
	}
	state := a.sessions.State()
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", state.User.Username, state.User.Role)
	return nil
}

func registerCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (prompted when empty)")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pass, err := a.password(*password)
	if err != nil {
		return err
	}
	if err := a.sessions.Register(ctx, *username, pass, *email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and signed in as %s\n", a.sessions.State().User.Username)
	return nil
}

func logoutCmd(ctx context.Context, a *app, _ []string) error {
	a.sessions.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func whoamiCmd(ctx context.Context, a *app, _ []string) error {
	state := a.sessions.State()
	if !state.IsAuthenticated {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (id %s, role %s)\n", state.User.Username, state.User.UserID, state.User.Role)
	return nil
}

func verifyCmd(ctx context.Context, a *app, _ []string) error {
	if !a.auth.VerifyToken(ctx) {
		return errors.Wrap(cerrors.ErrInvalidToken, "the stored token was not accepted")
	}
	fmt.Fprintln(a.out, "Token is valid")
	return nil
}

// openCmd navigates to a console path and keeps the view mounted until interrupted.
// While open, lines on stdin drive the view: a number of hours on the dashboard, a
// filter on the login events list, "r" to reload, "logout", or "q".
func openCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	hours := fs.Int("hours", a.cfg.GetDefaultHours(), "time range in hours")
	interval := fs.Duration("interval", a.cfg.GetRefreshInterval(), "refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := fs.Arg(0)
	if path == "" {
		path = console.RouteRoot
	}

	router := console.NewRouter(a.sessions)
	console.RegisterRoutes(router, a.out, a.dashboard, a.events,
		console.WithHours(*hours),
		console.WithRefreshInterval(*interval),
	)
	defer router.Close()
	stopWatch := router.Watch(ctx, a.sessions)
	defer stopWatch()

	res, err := router.Navigate(ctx, path)
	if err != nil {
		return err
	}
	if res.Outcome != guard.Render || res.Path == console.RouteLogin || res.Path == console.RouteRegister {
		return nil
	}

	lines := readLines(a.in)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				<-ctx.Done()
				return nil
			}
			if quit := a.handleLine(ctx, router, line); quit {
				return nil
			}
		}
	}
}

func (a *app) handleLine(ctx context.Context, router *console.Router, line string) (quit bool) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "q", "quit":
		return true
	case "logout":
		a.sessions.Logout(ctx)
		return true
	}

	_, view := router.Current()
	switch v := view.(type) {
	case *console.DashboardView:
		a.dashboardLine(v, line)
	case *console.LoginEventsView:
		a.eventsLine(v, line)
	}
	return false
}

func (a *app) dashboardLine(dash *console.DashboardView, line string) {
	if line == "r" {
		if err := dash.Refresh(); err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
		return
	}
	hours, err := strconv.Atoi(line)
	if err != nil {
		fmt.Fprintln(a.out, "Enter hours (1, 6, 24, 168, 720), r, logout or q")
		return
	}
	if err := dash.SetHours(hours); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func (a *app) eventsLine(events *console.LoginEventsView, line string) {
	var err error
	switch line {
	case "r":
		err = events.Reload()
	case "all":
		err = events.SetFilter(nil)
	case "anomalies":
		err = events.SetFilter(utils.Ptr(true))
	case "normal":
		err = events.SetFilter(utils.Ptr(false))
	default:
		fmt.Fprintln(a.out, "Enter all, anomalies, normal, r, logout or q")
	}
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func alertsCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("alerts", flag.ContinueOnError)
	severity := fs.String("severity", "", "low, medium, high or critical")
	resolved := fs.Bool("resolved", false, "only resolved (true) or unresolved (false) alerts")
	limit := fs.Int("limit", 20, "page size")
	skip := fs.Int("skip", 0, "rows to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	set := flagsSet(fs)
	query := dashboard.AlertQuery{
		Severity: utils.PtrIf(dashboard.Severity(*severity), set["severity"]),
		Resolved: utils.PtrIf(*resolved, set["resolved"]),
		Limit:    utils.PtrIf(*limit, set["limit"]),
		Skip:     utils.PtrIf(*skip, set["skip"]),
	}
	resp, err := a.dashboard.GetAlerts(ctx, query)
	if err != nil {
		return err
	}
	console.RenderAlerts(a.out, resp.Alerts)
	fmt.Fprintf(a.out, "%d of %d alerts\n", len(resp.Alerts), resp.Total)
	return nil
}

func resolveCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	reopen := fs.Bool("reopen", false, "mark the alert unresolved instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.Wrap(cerrors.ErrInvalidRequest, "resolve takes exactly one alert id")
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	resp, err := a.dashboard.UpdateAlert(ctx, fs.Arg(0), !*reopen)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}

func eventsCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	userID := fs.String("user", "", "only events for this user id")
	anomaly := fs.Bool("anomaly", false, "only anomalous (true) or normal (false) events")
	limit := fs.Int("limit", 50, "page size")
	skip := fs.Int("skip", 0, "rows to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	if id := fs.Arg(0); id != "" {
		event, err := a.events.Get(ctx, id)
		if err != nil {
			return err
		}
		console.RenderEvents(a.out, []loginevents.Event{*event})
		if len(event.AnomalyReasons) > 0 {
			fmt.Fprintf(a.out, "Reasons: %s\n", strings.Join(event.AnomalyReasons, "; "))
		}
		return nil
	}

	set := flagsSet(fs)
	resp, err := a.events.List(ctx, loginevents.Query{
		UserID:    utils.PtrIf(*userID, set["user"]),
		IsAnomaly: utils.PtrIf(*anomaly, set["anomaly"]),
		Limit:     utils.PtrIf(*limit, set["limit"]),
		Skip:      utils.PtrIf(*skip, set["skip"]),
	})
	if err != nil {
		return err
	}
	console.RenderEvents(a.out, resp.Events)
	fmt.Fprintf(a.out, "%d of %d events\n", len(resp.Events), resp.Total)
	return nil
}

// analyzeCmd submits one login attempt for scoring and prints the verdict.
func analyzeCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	userID := fs.String("user-id", "", "user id")
	username := fs.String("u", "", "username")
	ip := fs.String("ip", "", "IPv4 address of the attempt")
	browser := fs.String("browser", "Chrome", "browser")
	osName := fs.String("os", "Windows", "operating system")
	device := fs.String("device", "desktop", "device type")
	city := fs.String("city", "", "city")
	country := fs.String("country", "", "country")
	lat := fs.Float64("lat", 0, "latitude")
	lon := fs.Float64("lon", 0, "longitude")
	timestamp := fs.String("time", "", "RFC 3339 time of the attempt (default now)")
	failed := fs.Bool("failed", false, "the attempt failed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	set := flagsSet(fs)
	req := loginevents.AnalysisRequest{
		UserID:     *userID,
		Username:   *username,
		IPAddress:  *ip,
		DeviceInfo: loginevents.DeviceInfo{Browser: *browser, OS: *osName, DeviceType: *device},
		Timestamp:  *timestamp,
		Success:    utils.PtrIf(!*failed, set["failed"]),
	}
	if set["lat"] || set["lon"] || set["city"] || set["country"] {
		req.Location = &loginevents.Location{Latitude: *lat, Longitude: *lon, City: *city, Country: *country}
	}

	resp, err := a.events.Analyze(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: event %s, risk %s, severity %s, anomaly %t\n",
		resp.Message, resp.LoginEventID, dashboard.FormatRiskScore(resp.RiskScore), resp.Severity, resp.IsAnomaly)
	if resp.AlertID != "" {
		fmt.Fprintf(a.out, "Alert raised: %s\n", resp.AlertID)
	}
	if len(resp.Reasons) > 0 {
		fmt.Fprintf(a.out, "Reasons: %s\n", strings.Join(resp.Reasons, "; "))
	}
	return nil
}

// requireSession applies the route guard to one-shot commands.
func (a *app) requireSession() error {
	if d := guard.Decide(a.sessions.State()); d.Outcome != guard.Render {
		return errors.Wrap(cerrors.ErrNoSession, "run `console login` first")
	}
	return nil
}

func (a *app) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(a.out, "Password: ")
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(err, "reading password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// flagsSet reports which flags were given explicitly, so unset ones stay out of the
// query string.
func flagsSet(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// lockedWriter serializes writes from the command goroutine and refresh callbacks.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
