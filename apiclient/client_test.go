package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/secops-console/apiclient"
	fakecredentials "github.com/jrsteele09/secops-console/credentials/repofake"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/jrsteele09/secops-console/internal/utils"
	"github.com/jrsteele09/secops-console/users"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method   string
	path     string
	rawQuery string
	auth     string
	reqID    string
	body     map[string]any
}

func newTestServer(t *testing.T, status int, response any) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.path = r.URL.Path
		c.rawQuery = r.URL.RawQuery
		c.auth = r.Header.Get("Authorization")
		c.reqID = r.Header.Get("X-Request-ID")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&c.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestClient_AuthenticatedRequestCarriesBearerToken(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, map[string]any{"valid": true})
	store := fakecredentials.NewFakeStore()
	require.NoError(t, store.Save(context.Background(), "abc", users.Profile{UserID: "1", Username: "alice"}))

	client, err := apiclient.New(srv.URL, store)
	require.NoError(t, err)

	var out struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, client.Get(context.Background(), "/api/auth/verify", apiclient.Query{}, &out))
	require.True(t, out.Valid)
	require.Equal(t, "Bearer abc", got.auth)
	require.NotEmpty(t, got.reqID)
	require.Empty(t, got.rawQuery)
}

func TestClient_PublicRequestHasNoToken(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, map[string]any{})
	store := fakecredentials.NewFakeStore()
	require.NoError(t, store.Save(context.Background(), "abc", users.Profile{UserID: "1", Username: "alice"}))

	client, err := apiclient.New(srv.URL, store)
	require.NoError(t, err)

	err = client.Do(context.Background(), apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   map[string]string{"username": "alice", "password": "pw"},
		Public: true,
	}, nil)
	require.NoError(t, err)
	require.Empty(t, got.auth)
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "alice", got.body["username"])
}

func TestClient_NoSessionFailsBeforeSending(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, map[string]any{})
	client, err := apiclient.New(srv.URL, fakecredentials.NewFakeStore())
	require.NoError(t, err)

	err = client.Get(context.Background(), "/api/dashboard/stats", apiclient.Query{}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, cerrors.ErrNoSession)
	require.Empty(t, got.method)
}

func TestClient_ErrorBodyIsSurfacedVerbatim(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
	client, err := apiclient.New(srv.URL, fakecredentials.NewFakeStore())
	require.NoError(t, err)

	err = client.Do(context.Background(), apiclient.Request{Method: http.MethodPost, Path: "/api/auth/login", Public: true}, nil)
	require.Error(t, err)
	require.Equal(t, "Invalid credentials", err.Error())
	require.True(t, apiclient.IsUnauthorized(err))

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_ErrorWithoutBodyUsesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL, fakecredentials.NewFakeStore())
	require.NoError(t, err)

	err = client.Do(context.Background(), apiclient.Request{Method: http.MethodGet, Path: "/x", Public: true}, nil)
	require.EqualError(t, err, "Bad Gateway")
	require.Equal(t, http.StatusBadGateway, apiclient.StatusCode(err))
}

func TestNew_Validation(t *testing.T) {
	_, err := apiclient.New("", fakecredentials.NewFakeStore())
	require.Error(t, err)

	_, err = apiclient.New("http://localhost", nil)
	require.Error(t, err)
}

func TestQuery_OmitsUnsetOptions(t *testing.T) {
	t.Run("nothing set", func(t *testing.T) {
		var q apiclient.Query
		q.OptInt("limit", nil).OptBool("resolved", nil).OptString("severity", nil)
		require.Equal(t, "", q.Encode())
	})

	t.Run("explicit false and zero are kept", func(t *testing.T) {
		var q apiclient.Query
		q.OptBool("resolved", utils.Ptr(false)).OptInt("skip", utils.Ptr(0))
		require.Equal(t, "resolved=false&skip=0", q.Encode())
	})

	t.Run("mixed", func(t *testing.T) {
		var q apiclient.Query
		q.OptString("severity", utils.Ptr("high")).OptInt("limit", utils.Ptr(10)).OptBool("resolved", nil)
		require.Equal(t, "limit=10&severity=high", q.Encode())
	})
}

func TestClient_URL(t *testing.T) {
	client, err := apiclient.New("http://api.local/", fakecredentials.NewFakeStore())
	require.NoError(t, err)

	var q apiclient.Query
	q.Int("hours", 6)
	require.Equal(t, "http://api.local/api/dashboard/stats?hours=6", client.URL("/api/dashboard/stats", q))
	require.Equal(t, "http://api.local/api/dashboard/alerts", client.URL("/api/dashboard/alerts", apiclient.Query{}))
}

// deadlineStore records whether reads carried a deadline.
type deadlineStore struct {
	*fakecredentials.FakeStore
	deadlines chan time.Duration
}

func (s deadlineStore) Read(ctx context.Context) (string, *users.Profile) {
	deadline, ok := ctx.Deadline()
	if ok {
		s.deadlines <- time.Until(deadline)
	} else {
		s.deadlines <- 0
	}
	return s.FakeStore.Read(ctx)
}

func TestStoreTokenSource_BoundsStoreRead(t *testing.T) {
	store := deadlineStore{FakeStore: fakecredentials.NewFakeStore(), deadlines: make(chan time.Duration, 2)}
	require.NoError(t, store.Save(context.Background(), "T1", users.Profile{UserID: "u1", Username: "alice"}))

	tok, err := apiclient.NewStoreTokenSource(store).Token()
	require.NoError(t, err)
	require.Equal(t, "T1", tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)

	left := <-store.deadlines
	require.Greater(t, left, time.Duration(0))
	require.LessOrEqual(t, left, apiclient.TokenReadTimeout)

	require.NoError(t, store.Clear(context.Background()))
	_, err = apiclient.NewStoreTokenSource(store).Token()
	require.ErrorIs(t, err, cerrors.ErrNoSession)
}
