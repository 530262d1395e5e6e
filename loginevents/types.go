package loginevents

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
}

type DeviceInfo struct {
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	DeviceType string `json:"device_type"`
}

type Event struct {
	ID             string     `json:"_id"`
	UserID         string     `json:"user_id"`
	Username       string     `json:"username"`
	Timestamp      string     `json:"timestamp"`
	IPAddress      string     `json:"ip_address"`
	Location       Location   `json:"location"`
	DeviceInfo     DeviceInfo `json:"device_info"`
	Success        bool       `json:"success"`
	RiskScore      float64    `json:"risk_score"`
	IsAnomaly      bool       `json:"is_anomaly"`
	AnomalyReasons []string   `json:"anomaly_reasons"`
}

type EventsResponse struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
	Total  int     `json:"total"`
}

// AnalysisRequest submits one login attempt for scoring.
type AnalysisRequest struct {
	UserID     string     `json:"user_id"`
	Username   string     `json:"username"`
	IPAddress  string     `json:"ip_address"`
	DeviceInfo DeviceInfo `json:"device_info"`
	Location   *Location  `json:"location,omitempty"`
	Timestamp  string     `json:"timestamp,omitempty"`
	Success    *bool      `json:"success,omitempty"`
}

type AnalysisResponse struct {
	LoginEventID string   `json:"login_event_id"`
	IsAnomaly    bool     `json:"is_anomaly"`
	RiskScore    float64  `json:"risk_score"`
	Severity     string   `json:"severity"`
	Reasons      []string `json:"reasons"`
	AlertID      string   `json:"alert_id,omitempty"`
	Message      string   `json:"message"`
}
