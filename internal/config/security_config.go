package config

import "time"

type SecurityConfig interface {
	GetJWTSecret() string
	GetAccessTokenExpiry() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetJWTSecret() string {
	return GetEnv("JWT_SECRET_KEY", "jwt-secret-key-change-in-production")
}

func (Security) GetAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}
