package mockapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/secops-console/users"
	"github.com/pkg/errors"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the payload of a session token.
type Claims struct {
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	Role     users.RoleType `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Profile() users.Profile {
	role := c.Role
	if role == "" {
		role = users.RoleAnalyst
	}
	return users.Profile{UserID: c.UserID, Username: c.Username, Role: role}
}

// TokenIssuer signs and checks HS256 session tokens.
type TokenIssuer struct {
	secret  []byte
	expiry  time.Duration
	nowTime func() time.Time
}

type TokenIssuerOption func(*TokenIssuer)

// WithIssuerNowTime sets the now time function (primarily for testing)
func WithIssuerNowTime(nowFunc func() time.Time) TokenIssuerOption {
	return func(ti *TokenIssuer) {
		ti.nowTime = nowFunc
	}
}

func NewTokenIssuer(secret string, expiry time.Duration, options ...TokenIssuerOption) *TokenIssuer {
	ti := &TokenIssuer{secret: []byte(secret), expiry: expiry, nowTime: time.Now}
	for _, opt := range options {
		opt(ti)
	}
	return ti
}

func (ti *TokenIssuer) Issue(p users.Profile) (string, error) {
	now := ti.nowTime()
	claims := Claims{
		UserID:   p.UserID,
		Username: p.Username,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.expiry)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signed, nil
}

// Parse verifies the signature and expiry of token and returns its claims.
func (ti *TokenIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(ti.nowTime))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(ErrTokenInvalid, err.Error())
	}
	if claims.UserID == "" || claims.Username == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
