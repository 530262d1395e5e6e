package auth

import "github.com/jrsteele09/secops-console/users"

const (
	RouteLogin    = "/api/auth/login"
	RouteRegister = "/api/auth/register"
	RouteVerify   = "/api/auth/verify"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// LoginResponse is the body of a successful POST /api/auth/login
type LoginResponse struct {
	Message string        `json:"message,omitempty"`
	Token   string        `json:"token"`
	User    users.Profile `json:"user"`
}

// RegisterResponse is the body of a successful POST /api/auth/register
type RegisterResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// VerifyResponse is the body of GET /api/auth/verify
type VerifyResponse struct {
	Valid bool           `json:"valid"`
	User  *users.Profile `json:"user,omitempty"`
	Error string         `json:"error,omitempty"`
}
