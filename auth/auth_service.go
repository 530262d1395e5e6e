// Package auth talks to the authentication endpoints of the analytics API and keeps
// the credential store in step with the outcome.
package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/secops-console/apiclient"
	"github.com/jrsteele09/secops-console/credentials"
	"github.com/jrsteele09/secops-console/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Doer is the part of apiclient.Client the service needs.
type Doer interface {
	Do(ctx context.Context, req apiclient.Request, out any) error
}

// Service performs login, registration and token verification.
type Service struct {
	api   Doer
	store credentials.Store
}

// NewService initializes a new Service with required dependencies.
func NewService(api Doer, store credentials.Store) (*Service, error) {
	if api == nil {
		return nil, errors.New("[NewService] api client is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] credential store is required")
	}
	return &Service{api: api, store: store}, nil
}

// Login sends the credentials and, on success, persists the returned token and
// profile before returning them. A rejection is returned unchanged and nothing is
// written.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	resp, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.Persist(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Authenticate performs the login call without touching the credential store.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := s.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   RouteLogin,
		Body:   LoginRequest{Username: username, Password: password},
		Public: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Token == "" {
		return nil, MissingTokenErr
	}
	if !resp.User.Valid() {
		return nil, MissingProfileErr
	}
	return &resp, nil
}

// Persist writes a successful login to the credential store.
func (s *Service) Persist(ctx context.Context, resp *LoginResponse) error {
	if resp == nil {
		return errors.New("[Service.Persist] nil login response")
	}
	if err := s.store.Save(ctx, resp.Token, resp.User); err != nil {
		return errors.Wrap(err, "[Service.Persist] store.Save")
	}
	return nil
}

// Register creates an account. It never establishes a session.
func (s *Service) Register(ctx context.Context, username, password, email string) (*RegisterResponse, error) {
	var resp RegisterResponse
	err := s.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   RouteRegister,
		Body:   RegisterRequest{Username: username, Password: password, Email: email},
		Public: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyToken asks the API whether the stored token is still accepted. Any failure,
// including a missing token, reads as false.
func (s *Service) VerifyToken(ctx context.Context) bool {
	var resp VerifyResponse
	err := s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: RouteVerify}, &resp)
	if err != nil {
		log.Debug().Err(err).Msg("token verification failed")
		return false
	}
	return resp.Valid
}

// Logout forgets the stored session. No network call is made.
func (s *Service) Logout(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		log.Err(err).Msg("Logout: failed to clear credential store")
	}
}

// StoredSession returns what the credential store currently holds.
func (s *Service) StoredSession(ctx context.Context) (string, *users.Profile) {
	return s.store.Read(ctx)
}
