// Package mockapitest starts the mock analytics API on a loopback listener for tests.
package mockapitest

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/secops-console/internal/config"
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

// Env is a running mock API.
type Env struct {
	API      *mockapi.Server
	Server   *httptest.Server
	Accounts *fakeuserrepo.FakeAccountRepo
}

// New starts a mock API that is shut down when the test ends.
func New(t testing.TB, options ...mockapi.ServerOption) *Env {
	t.Helper()
	accounts := fakeuserrepo.NewFakeAccountRepo()
	api, err := mockapi.New(testConfig{}, accounts, options...)
	require.NoError(t, err)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return &Env{API: api, Server: srv, Accounts: accounts}
}

func (e *Env) URL() string {
	return e.Server.URL
}

// AddAccount creates an analyst account directly in the repo.
func (e *Env) AddAccount(t testing.TB, username, password string) *users.Account {
	t.Helper()
	hash, err := users.HashPassword(password)
	require.NoError(t, err)
	account := &users.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         users.RoleAnalyst,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.Accounts.Create(account))
	return account
}
