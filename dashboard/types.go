package dashboard

// Severity of an alert
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertType classifies why an alert was raised
type AlertType string

const (
	AlertSuspiciousLogin AlertType = "suspicious_login"
	AlertUnusualLocation AlertType = "unusual_location"
	AlertOffHours        AlertType = "off_hours"
	AlertFailedAttempts  AlertType = "failed_attempts"
)

// TimeRange is one of the history windows offered by the dashboard
type TimeRange struct {
	Label string
	Hours int
}

// TimeRanges lists the selectable windows, shortest first.
var TimeRanges = []TimeRange{
	{Label: "Last Hour", Hours: 1},
	{Label: "Last 6 Hours", Hours: 6},
	{Label: "Last 24 Hours", Hours: 24},
	{Label: "Last 7 Days", Hours: 168},
	{Label: "Last 30 Days", Hours: 720},
}

const DefaultHours = 24

type Stats struct {
	TimeRangeHours  int     `json:"time_range_hours"`
	TotalLogins     int     `json:"total_logins"`
	AnomalousLogins int     `json:"anomalous_logins"`
	AnomalyRate     float64 `json:"anomaly_rate"`
	ActiveAlerts    int     `json:"active_alerts"`
	HighRiskLogins  int     `json:"high_risk_logins"`
	AvgRiskScore    float64 `json:"avg_risk_score"`
}

type AlertLocation struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type AlertDetails struct {
	RiskScore *float64       `json:"risk_score,omitempty"`
	Reasons   []string       `json:"reasons,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	Location  *AlertLocation `json:"location,omitempty"`
}

type Alert struct {
	ID           string       `json:"_id"`
	AlertType    AlertType    `json:"alert_type"`
	Severity     Severity     `json:"severity"`
	UserID       string       `json:"user_id"`
	Username     string       `json:"username"`
	Description  string       `json:"description"`
	Timestamp    string       `json:"timestamp"`
	LoginEventID string       `json:"login_event_id,omitempty"`
	Details      AlertDetails `json:"details"`
	Resolved     bool         `json:"resolved"`
}

type AlertsResponse struct {
	Alerts []Alert `json:"alerts"`
	Count  int     `json:"count"`
	Total  int     `json:"total"`
}

type UpdateAlertRequest struct {
	Resolved bool `json:"resolved"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TimelinePoint struct {
	Timestamp       string `json:"timestamp"`
	TotalLogins     int    `json:"total_logins"`
	AnomalousLogins int    `json:"anomalous_logins"`
}

type TimelineResponse struct {
	Timeline []TimelinePoint `json:"timeline"`
}

type TopRiskUser struct {
	UserID       string  `json:"user_id"`
	Username     string  `json:"username"`
	MaxRiskScore float64 `json:"max_risk_score"`
	AvgRiskScore float64 `json:"avg_risk_score"`
	AnomalyCount int     `json:"anomaly_count"`
	TotalLogins  int     `json:"total_logins"`
}

type TopRisksResponse struct {
	TopRisks []TopRiskUser `json:"top_risks"`
}
