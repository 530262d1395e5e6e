// Package credentials persists the session token and the operator profile that
// backs it. Every backend keeps the two values under fixed keys and writes or
// removes them together.
package credentials

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jrsteele09/secops-console/users"
	"github.com/rs/zerolog/log"
)

// Fixed keys the token and serialized profile are stored under.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Store is durable storage for one session.
//
// Save writes both entries atomically. Read never fails: a value that cannot be read
// or parsed is reported as absent. Clear removes both entries and is safe to call when
// nothing is stored.
type Store interface {
	Save(ctx context.Context, token string, user users.Profile) error
	Read(ctx context.Context) (token string, user *users.Profile)
	Clear(ctx context.Context) error
}

// EncodeProfile serializes a profile the way every backend stores it.
func EncodeProfile(user users.Profile) (string, error) {
	b, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeProfile parses a stored profile. Empty, malformed or null payloads yield nil.
func DecodeProfile(raw string) *users.Profile {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var p *users.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Debug().Err(err).Msg("stored user profile is not valid JSON")
		return nil
	}
	return p
}
