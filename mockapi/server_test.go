package mockapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/secops-console/auth"
	"github.com/jrsteele09/secops-console/dashboard"
	"github.com/jrsteele09/secops-console/internal/config"
	"github.com/jrsteele09/secops-console/loginevents"
	"github.com/jrsteele09/secops-console/mockapi"
	"github.com/jrsteele09/secops-console/users"
	fakeuserrepo "github.com/jrsteele09/secops-console/users/repofake"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	config.Cors
	config.Security
}

func (testConfig) GetEnv() string { return "TEST" }

type testServer struct {
	api *mockapi.Server
	srv *httptest.Server
}

func newTestServer(t *testing.T, options ...mockapi.ServerOption) *testServer {
	t.Helper()
	options = append([]mockapi.ServerOption{mockapi.WithNowTime(func() time.Time { return testNow })}, options...)
	api, err := mockapi.New(testConfig{}, fakeuserrepo.NewFakeAccountRepo(), options...)
	require.NoError(t, err)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return &testServer{api: api, srv: srv}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	var reg auth.RegisterResponse
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, mockapi.RouteRegister, "", auth.RegisterRequest{Username: username, Password: password}, &reg))
	var resp auth.LoginResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, mockapi.RouteLogin, "", auth.LoginRequest{Username: username, Password: password}, &resp))
	return resp.Token
}

type apiError struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

func TestNew(t *testing.T) {
	_, err := mockapi.New(nil, fakeuserrepo.NewFakeAccountRepo())
	require.Error(t, err)
	_, err = mockapi.New(testConfig{}, nil)
	require.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	t.Run("Register", func(t *testing.T) {
		var resp auth.RegisterResponse
		code := ts.do(t, http.MethodPost, mockapi.RouteRegister, "", auth.RegisterRequest{Username: "alice", Password: "pw", Email: "alice@example.com"}, &resp)
		require.Equal(t, http.StatusCreated, code)
		require.Equal(t, "alice", resp.Username)
		require.NotEmpty(t, resp.UserID)
	})

	t.Run("Duplicate username", func(t *testing.T) {
		var resp apiError
		code := ts.do(t, http.MethodPost, mockapi.RouteRegister, "", auth.RegisterRequest{Username: "alice", Password: "other"}, &resp)
		require.Equal(t, http.StatusConflict, code)
		require.Equal(t, "Username already exists", resp.Error)
	})

	t.Run("Missing password", func(t *testing.T) {
		var resp apiError
		code := ts.do(t, http.MethodPost, mockapi.RouteRegister, "", auth.RegisterRequest{Username: "carol"}, &resp)
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "Username and password required", resp.Error)
	})

	t.Run("Login", func(t *testing.T) {
		var resp auth.LoginResponse
		code := ts.do(t, http.MethodPost, mockapi.RouteLogin, "", auth.LoginRequest{Username: "alice", Password: "pw"}, &resp)
		require.Equal(t, http.StatusOK, code)
		require.NotEmpty(t, resp.Token)
		require.Equal(t, "alice", resp.User.Username)
		require.Equal(t, "analyst", string(resp.User.Role))

		claims, err := ts.api.Tokens().Parse(resp.Token)
		require.NoError(t, err)
		require.Equal(t, resp.User.UserID, claims.UserID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		var resp apiError
		code := ts.do(t, http.MethodPost, mockapi.RouteLogin, "", auth.LoginRequest{Username: "alice", Password: "nope"}, &resp)
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "Invalid credentials", resp.Error)
	})

	t.Run("Unknown user", func(t *testing.T) {
		var resp apiError
		code := ts.do(t, http.MethodPost, mockapi.RouteLogin, "", auth.LoginRequest{Username: "mallory", Password: "pw"}, &resp)
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "Invalid credentials", resp.Error)
	})
}

func TestVerify(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice", "pw")

	t.Run("Valid", func(t *testing.T) {
		var resp auth.VerifyResponse
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, mockapi.RouteVerify, token, nil, &resp))
		require.True(t, resp.Valid)
		require.Equal(t, "alice", resp.User.Username)
	})

	t.Run("Missing", func(t *testing.T) {
		var resp auth.VerifyResponse
		require.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, mockapi.RouteVerify, "", nil, &resp))
		require.False(t, resp.Valid)
	})

	t.Run("Tampered", func(t *testing.T) {
		var resp auth.VerifyResponse
		require.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, mockapi.RouteVerify, token+"x", nil, &resp))
		require.False(t, resp.Valid)
		require.Equal(t, "Invalid token", resp.Error)
	})

	t.Run("Expired", func(t *testing.T) {
		old := mockapi.NewTokenIssuer(testConfig{}.GetJWTSecret(), time.Hour,
			mockapi.WithIssuerNowTime(func() time.Time { return testNow.Add(-2 * time.Hour) }))
		expired, err := old.Issue(mustProfile(t, ts, token))
		require.NoError(t, err)

		var resp auth.VerifyResponse
		require.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, mockapi.RouteVerify, expired, nil, &resp))
		require.Equal(t, "Token expired", resp.Error)
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	var resp apiError
	require.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, mockapi.RouteStats, "", nil, &resp))
	require.Equal(t, "Authentication token is missing", resp.Error)

	require.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, mockapi.RouteAlerts, "garbage", nil, &resp))
	require.Equal(t, "Invalid token", resp.Error)
}

func TestDashboardEndpoints(t *testing.T) {
	ts := newTestServer(t, mockapi.WithStore(fixtureStore()))
	token := ts.login(t, "alice", "pw")

	t.Run("Stats", func(t *testing.T) {
		var stats dashboard.Stats
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, mockapi.RouteStats+"?hours=24", token, nil, &stats))
		require.Equal(t, 24, stats.TimeRangeHours)
		require.Equal(t, 2, stats.TotalLogins)

		var resp apiError
		require.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, mockapi.RouteStats+"?hours=abc", token, nil, &resp))
		require.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, mockapi.RouteStats+"?hours=0", token, nil, &resp))
	})

	t.Run("Alerts", func(t *testing.T) {
		var resp dashboard.AlertsResponse
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, mockapi.RouteAlerts+"?resolved=false&limit=10", token, nil, &resp))
		require.Equal(t, 1, resp.Count)
		require.Equal(t, 1, resp.Total)
		require.Equal(t, "a1", resp.Alerts[0].ID)
	})

	t.Run("Resolve alert", func(t *testing.T) {
		var msg dashboard.MessageResponse
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPut, mockapi.RouteAlerts+"/a1", token, dashboard.UpdateAlertRequest{Resolved: true}, &msg))
		require.Equal(t, "Alert updated successfully", msg.Message)

		var resp apiError
		require.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPut, mockapi.RouteAlerts+"/missing", token, dashboard.UpdateAlertRequest{Resolved: true}, &resp))
		require.Equal(t, "Alert not found", resp.Error)

		require.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPut, mockapi.RouteAlerts+"/a1", token, map[string]string{}, &resp))
		require.Equal(t, "No fields to update", resp.Error)
	})

	t.Run("Timeline", func(t *testing.T) {
		var resp dashboard.TimelineResponse
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, mockapi.RouteTimeline+"?hours=24", token, nil, &resp))
		require.Len(t, resp.Timeline, 2)
	})

	t.Run("Top risks", func(t *testing.T) {
		var resp dashboard.TopRisksResponse
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, mockapi.RouteTopRisks+"?hours=168&limit=1", token, nil, &resp))
		require.Len(t, resp.TopRisks, 1)
		require.Equal(t, "user_a", resp.TopRisks[0].UserID)
	})
}

func TestLoginEventEndpoints(t *testing.T) {
	ts := newTestServer(t, mockapi.WithStore(fixtureStore()))
	token := ts.login(t, "alice", "pw")

	t.Run("List", func(t *testing.T) {
		var resp loginevents.EventsResponse
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, mockapi.RouteEvents+"?user_id=user_b&limit=1", token, nil, &resp))
		require.Equal(t, 1, resp.Count)
		require.Equal(t, 2, resp.Total)
	})

	t.Run("Get", func(t *testing.T) {
		var ev loginevents.Event
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, mockapi.RouteEvents+"/e1", token, nil, &ev))
		require.Equal(t, "alice", ev.Username)

		var resp apiError
		require.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, mockapi.RouteEvents+"/nope", token, nil, &resp))
	})

	t.Run("Analyze invalid", func(t *testing.T) {
		var resp apiError
		code := ts.do(t, http.MethodPost, mockapi.RouteAnalyze, token, map[string]any{"user_id": "u", "ip_address": "not-an-ip"}, &resp)
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "Invalid input", resp.Error)
		require.Contains(t, resp.Details, "Invalid IP address format")
		require.Contains(t, resp.Details, "Missing required field: username")
		require.Contains(t, resp.Details, "Missing required field: device_info")
	})

	t.Run("Analyze normal login", func(t *testing.T) {
		var resp loginevents.AnalysisResponse
		code := ts.do(t, http.MethodPost, mockapi.RouteAnalyze, token, loginevents.AnalysisRequest{
			UserID:     "user_c",
			Username:   "carol",
			IPAddress:  "10.0.0.5",
			DeviceInfo: loginevents.DeviceInfo{Browser: "Chrome", OS: "Windows", DeviceType: "desktop"},
			Timestamp:  "2026-01-10T14:00:00",
		}, &resp)
		require.Equal(t, http.StatusOK, code)
		require.False(t, resp.IsAnomaly)
		require.Equal(t, "normal", resp.Severity)
		require.Empty(t, resp.AlertID)

		_, err := ts.api.Store().Event(resp.LoginEventID)
		require.NoError(t, err)
	})

	t.Run("Analyze anomalous login", func(t *testing.T) {
		var resp loginevents.AnalysisResponse
		code := ts.do(t, http.MethodPost, mockapi.RouteAnalyze, token, loginevents.AnalysisRequest{
			UserID:     "user_c",
			Username:   "carol",
			IPAddress:  "203.0.113.9",
			DeviceInfo: loginevents.DeviceInfo{Browser: "Chrome", OS: "Linux", DeviceType: "desktop"},
			Location:   &loginevents.Location{Latitude: 55.75, Longitude: 37.61, City: "Moscow", Country: "Russia"},
			Timestamp:  "2026-01-10T03:00:00Z",
		}, &resp)
		require.Equal(t, http.StatusOK, code)
		require.True(t, resp.IsAnomaly)
		require.Equal(t, 0.8, resp.RiskScore)
		require.Equal(t, "high", resp.Severity)
		require.NotEmpty(t, resp.AlertID)
		require.Len(t, resp.Reasons, 2)
	})
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	preflight := func(t *testing.T, requestHeaders string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, ts.srv.URL+mockapi.RouteStats, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		if requestHeaders != "" {
			req.Header.Set("Access-Control-Request-Headers", requestHeaders)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("Authorization header", func(t *testing.T) {
		resp := preflight(t, "authorization")
		require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("Content type and authorization", func(t *testing.T) {
		resp := preflight(t, "authorization,content-type")
		require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("Unknown origin", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.srv.URL+mockapi.RouteStats, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://evil.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func mustProfile(t *testing.T, ts *testServer, token string) users.Profile {
	t.Helper()
	claims, err := ts.api.Tokens().Parse(token)
	require.NoError(t, err)
	return claims.Profile()
}
