package mockapi

import (
	"github.com/jrsteele09/secops-console/auth"
	"github.com/jrsteele09/secops-console/dashboard"
	"github.com/jrsteele09/secops-console/loginevents"
)

// Route path constants shared with the client packages.
const (
	RouteLogin    = auth.RouteLogin
	RouteRegister = auth.RouteRegister
	RouteVerify   = auth.RouteVerify

	RouteStats    = dashboard.RouteStats
	RouteAlerts   = dashboard.RouteAlerts
	RouteAlert    = dashboard.RouteAlerts + "/{id}"
	RouteTimeline = dashboard.RouteTimeline
	RouteTopRisks = dashboard.RouteTopRisks

	RouteEvents  = loginevents.RouteEvents
	RouteEvent   = loginevents.RouteEvents + "/{id}"
	RouteAnalyze = loginevents.RouteAnalyze

	RouteHealth = "/api/health"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// AUTH
	s.RegisterRouteFunc("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteVerify, ChainMiddleware(s.VerifyHandler(), s.APIMiddleware()...))

	// DASHBOARD
	s.RegisterRouteFunc("GET "+RouteStats, ChainMiddleware(s.StatsHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAlerts, ChainMiddleware(s.AlertsHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("PUT "+RouteAlert, ChainMiddleware(s.UpdateAlertHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteTimeline, ChainMiddleware(s.TimelineHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteTopRisks, ChainMiddleware(s.TopRisksHandler(), s.ProtectedMiddleware()...))

	// LOGIN EVENTS
	s.RegisterRouteFunc("GET "+RouteEvents, ChainMiddleware(s.EventsHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteEvent, ChainMiddleware(s.EventHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAnalyze, ChainMiddleware(s.AnalyzeHandler(), s.ProtectedMiddleware()...))

	s.RegisterRouteFunc("/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
}
