package mockapi

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jrsteele09/secops-console/dashboard"
	"github.com/jrsteele09/secops-console/internal/utils"
	"github.com/jrsteele09/secops-console/loginevents"
)

var seedLocations = []loginevents.Location{
	{Latitude: 37.7749, Longitude: -122.4194, City: "San Francisco", Country: "USA"},
	{Latitude: 40.7128, Longitude: -74.0060, City: "New York", Country: "USA"},
	{Latitude: 29.7604, Longitude: -95.3698, City: "Houston", Country: "USA"},
	{Latitude: 47.6062, Longitude: -122.3321, City: "Seattle", Country: "USA"},
}

var seedForeignLocations = []loginevents.Location{
	{Latitude: 39.9042, Longitude: 116.4074, City: "Beijing", Country: "China"},
	{Latitude: 55.7558, Longitude: 37.6173, City: "Moscow", Country: "Russia"},
	{Latitude: -23.5505, Longitude: -46.6333, City: "Sao Paulo", Country: "Brazil"},
}

var seedDevices = []loginevents.DeviceInfo{
	{Browser: "Chrome", OS: "Windows", DeviceType: "desktop"},
	{Browser: "Safari", OS: "iOS", DeviceType: "mobile"},
	{Browser: "Firefox", OS: "macOS", DeviceType: "desktop"},
	{Browser: "Edge", OS: "Windows", DeviceType: "desktop"},
}

// SeedOptions shapes the generated history.
type SeedOptions struct {
	Users  int
	Events int
	Days   int
	Seed   uint64
}

// DefaultSeedOptions gives a week of activity for a small team.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Users: 12, Events: 400, Days: 7, Seed: 1}
}

// Seed fills store with a repeatable history ending at now. Anomalous events raise
// alerts; roughly a third of those are already resolved.
func Seed(store *Store, now time.Time, opts SeedOptions) {
	if opts.Users <= 0 || opts.Events <= 0 || opts.Days <= 0 {
		return
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	var rules fixedRules
	window := time.Duration(opts.Days) * 24 * time.Hour

	for range opts.Events {
		n := rng.IntN(opts.Users)
		userID := fmt.Sprintf("user_%03d", n)
		username := fmt.Sprintf("employee_%03d", n)
		at := now.Add(-time.Duration(rng.Int64N(int64(window))))

		loc := seedLocations[n%len(seedLocations)]
		if rng.Float64() < 0.08 {
			loc = seedForeignLocations[rng.IntN(len(seedForeignLocations))]
		}
		success := rng.Float64() >= 0.1
		v := rules.score(at, loc, success)

		ev := store.AddEvent(loginevents.Event{
			UserID:         userID,
			Username:       username,
			IPAddress:      fmt.Sprintf("10.%d.%d.%d", n, rng.IntN(256), 1+rng.IntN(254)),
			Location:       loc,
			DeviceInfo:     seedDevices[(n+rng.IntN(2))%len(seedDevices)],
			Success:        success,
			RiskScore:      v.score,
			IsAnomaly:      v.anomaly,
			AnomalyReasons: v.reasons,
		}, at)

		if v.anomaly {
			store.AddAlert(newAlert(ev, v, rng.Float64() < 0.33), at)
		}
	}
}

func newAlert(ev loginevents.Event, v verdict, resolved bool) dashboard.Alert {
	alertType := v.alertType
	if alertType == "" {
		alertType = dashboard.AlertSuspiciousLogin
	}
	return dashboard.Alert{
		AlertType:    alertType,
		Severity:     severityFor(v.score),
		UserID:       ev.UserID,
		Username:     ev.Username,
		Description:  fmt.Sprintf("Suspicious login detected with risk score %.2f", v.score),
		LoginEventID: ev.ID,
		Details: dashboard.AlertDetails{
			RiskScore: utils.Ptr(v.score),
			Reasons:   v.reasons,
			IPAddress: ev.IPAddress,
			Location:  &dashboard.AlertLocation{City: ev.Location.City, Country: ev.Location.Country},
		},
		Resolved: resolved,
	}
}
