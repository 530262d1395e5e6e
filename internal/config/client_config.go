package config

import (
	"strconv"
	"time"
)

type ClientConfig interface {
	GetRefreshInterval() time.Duration
	GetDefaultHours() int
	GetHTTPTimeout() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

// GetRefreshInterval reads REFRESH_INTERVAL in milliseconds.
func (Client) GetRefreshInterval() time.Duration {
	return time.Duration(getEnvInt("REFRESH_INTERVAL", 30000)) * time.Millisecond
}

func (Client) GetDefaultHours() int {
	hours := getEnvInt("DEFAULT_HOURS", 24)
	if hours <= 0 {
		return 24
	}
	return hours
}

func (Client) GetHTTPTimeout() time.Duration {
	return time.Duration(getEnvInt("HTTP_TIMEOUT", 10)) * time.Second
}

func getEnvInt(envVar string, defaultValue int) int {
	v, err := strconv.Atoi(GetEnv(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
