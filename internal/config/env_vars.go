package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	portEnvVar           = "PORT"
	appNameVar           = "APP_NAME"
	folderEnvVar         = "FOLDER"
	apiBaseURLVar        = "API_BASE_URL"
	credentialBackendVar = "CREDENTIAL_BACKEND"
	redisAddrVar         = "REDIS_ADDR"
	redisNamespaceVar    = "REDIS_NAMESPACE"
	logLevelVar          = "LOG_LEVEL"
	allowedOriginsVar    = "ALLOWED_ORIGINS"
)

// CredentialBackend names the durable storage used for the session token and profile.
type CredentialBackend string

const (
	CredentialBackendFile   CredentialBackend = "file"
	CredentialBackendSQLite CredentialBackend = "sqlite"
	CredentialBackendRedis  CredentialBackend = "redis"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "5000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "SecOps Console")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetAPIBaseURL returns the analytics API root, without a trailing slash.
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:5000"), "/")
}

func (EnvVars) GetCredentialBackend() CredentialBackend {
	return CredentialBackend(strings.ToLower(GetEnv(credentialBackendVar, string(CredentialBackendFile))))
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (EnvVars) GetRedisNamespace() string {
	return GetEnv(redisNamespaceVar, "secops:console")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
