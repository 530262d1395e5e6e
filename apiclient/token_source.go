package apiclient

import (
	"context"
	"time"

	"github.com/jrsteele09/secops-console/credentials"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"golang.org/x/oauth2"
)

// storeTokenSource hands the stored session token to oauth2.Transport. It is read on
// every request so a logout or a new login takes effect immediately.
type storeTokenSource struct {
	store credentials.Store
}

var _ oauth2.TokenSource = storeTokenSource{}

// TokenReadTimeout bounds the store read behind each request. oauth2.TokenSource
// carries no context, so the caller's cancellation cannot reach the store.
const TokenReadTimeout = 2 * time.Second

func NewStoreTokenSource(store credentials.Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), TokenReadTimeout)
	defer cancel()
	token, _ := s.store.Read(ctx)
	if token == "" {
		return nil, cerrors.ErrNoSession
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
