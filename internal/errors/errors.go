package errors

import "errors"

// Sentinels shared by the console packages and the mock API. Callers wrap them with
// context and match with errors.Is.
var (
	// Session errors
	ErrNoSession          = errors.New("no session")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	// Storage errors
	ErrStorageUnavailable = errors.New("credential storage unavailable")
	ErrUnknownBackend     = errors.New("unknown credential backend")

	// Dashboard errors
	ErrInvalidTimeRange      = errors.New("time range must be a positive number of hours")
	ErrCoordinatorStopped    = errors.New("refresh coordinator stopped")
	ErrCoordinatorStarted    = errors.New("refresh coordinator already started")
	ErrCoordinatorNotRunning = errors.New("refresh coordinator not started")

	// Navigation errors
	ErrRouteNotFound = errors.New("route not found")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)
