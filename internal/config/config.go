package config

import (
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	ClientConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetAPIBaseURL() string
	GetCredentialBackend() CredentialBackend
	GetRedisAddr() string
	GetRedisNamespace() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type mainConfig struct {
	EnvVars
	Cors
	Client
	Security
}

// New loads an optional .env file from the working directory and returns a Config
// backed by environment variables.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
