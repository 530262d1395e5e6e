package mockapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/secops-console/users"
	"github.com/pkg/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyClaims stores parsed token claims
	ContextKeyClaims ContextKey = "claims"
)

// RequireAuth is middleware that validates a Bearer session token and injects its
// claims into the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeError(w, err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := s.tokens.Parse(token)
			switch {
			case errors.Is(err, ErrTokenExpired):
				writeError(w, "Token has expired", http.StatusUnauthorized)
				return
			case err != nil:
				writeError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

var (
	errMissingToken     = errors.New("Authentication token is missing")
	errInvalidTokenForm = errors.New("Invalid token format")
)

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errInvalidTokenForm
	}
	if parts[1] == "" {
		return "", errMissingToken
	}
	return parts[1], nil
}

// CurrentProfile returns the identity RequireAuth placed in ctx.
func CurrentProfile(ctx context.Context) (users.Profile, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*Claims)
	if !ok || claims == nil {
		return users.Profile{}, false
	}
	return claims.Profile(), true
}
