package mockapi

import (
	"time"

	"github.com/jrsteele09/secops-console/dashboard"
	"github.com/jrsteele09/secops-console/loginevents"
)

const (
	anomalyThreshold    = 0.7
	mediumRiskThreshold = 0.6
	highRiskThreshold   = 0.8

	workdayStartHour = 6
	workdayEndHour   = 22
)

// homeCountry is where the seeded workforce normally logs in from.
const homeCountry = "USA"

// fixedRules is a stand-in for the analytics service's model: a handful of additive
// rules that give the console believable, repeatable scores.
type fixedRules struct{}

type verdict struct {
	score     float64
	anomaly   bool
	reasons   []string
	alertType dashboard.AlertType
}

func (fixedRules) score(at time.Time, loc loginevents.Location, success bool) verdict {
	var v verdict
	if h := at.UTC().Hour(); h < workdayStartHour || h >= workdayEndHour {
		v.score += 0.35
		v.reasons = append(v.reasons, "Login outside typical hours")
		v.alertType = dashboard.AlertOffHours
	}
	if loc.Country != "" && loc.Country != "Unknown" && loc.Country != homeCountry {
		v.score += 0.45
		v.reasons = append(v.reasons, "Login from unusual location: "+loc.City+", "+loc.Country)
		v.alertType = dashboard.AlertUnusualLocation
	}
	if !success {
		v.score += 0.3
		v.reasons = append(v.reasons, "Failed login attempt")
		if v.alertType == "" {
			v.alertType = dashboard.AlertFailedAttempts
		}
	}
	if v.score > 1 {
		v.score = 1
	}
	v.score = round3(v.score)
	v.anomaly = v.score >= anomalyThreshold
	if v.anomaly && len(v.reasons) > 1 {
		v.alertType = dashboard.AlertSuspiciousLogin
	}
	if v.reasons == nil {
		v.reasons = []string{}
	}
	return v
}

// severityFor maps a risk score onto the alert severities the analysis endpoint
// reports.
func severityFor(score float64) dashboard.Severity {
	switch {
	case score >= highRiskThreshold:
		return dashboard.SeverityHigh
	case score >= mediumRiskThreshold:
		return dashboard.SeverityMedium
	default:
		return dashboard.SeverityLow
	}
}
