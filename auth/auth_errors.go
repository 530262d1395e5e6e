package auth

import "errors"

var (
	MissingTokenErr   = errors.New("login response carried no token")
	MissingProfileErr = errors.New("login response carried no user")
)
