package config

import (
	"os"
	"strconv"
	"time"
)

const (
	DefaultPort               = 8080
	DefaultTokenByteLength    = 32
	DefaultAbsoluteTTLSec     = 2592000 // 30 days
	DefaultRollingTTLSec      = 604800  // 7 days
	DefaultMaxSessionsPerUser = 5
	DefaultBcryptCost         = 12
	DefaultSweepIntervalSec   = 3600
	DefaultSessionCookieName  = "token"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Env         string
	Host        string
	Port        int
	LogLevel    string
	CorsOrigins string
}

type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	TokenByteLength    int
	AbsoluteTTL        time.Duration
	RollingTTL         time.Duration
	MaxSessionsPerUser int
	BcryptCost         int
	SweepInterval      time.Duration
	SessionCookieName  string
	SecureCookie       bool
	CookieDomain       string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Env:         getEnv("APP_ENV", "development"),
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        getEnvInt("PORT", DefaultPort),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			CorsOrigins: getEnv("CORS_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			TokenByteLength:    getEnvInt("TOKEN_BYTE_LENGTH", DefaultTokenByteLength),
			AbsoluteTTL:        time.Duration(getEnvInt("SESSION_ABSOLUTE_TTL", DefaultAbsoluteTTLSec)) * time.Second,
			RollingTTL:         time.Duration(getEnvInt("SESSION_ROLLING_TTL", DefaultRollingTTLSec)) * time.Second,
			MaxSessionsPerUser: getEnvInt("MAX_SESSIONS_PER_USER", DefaultMaxSessionsPerUser),
			BcryptCost:         getEnvInt("BCRYPT_COST", DefaultBcryptCost),
			SweepInterval:      time.Duration(getEnvInt("SESSION_SWEEP_INTERVAL", DefaultSweepIntervalSec)) * time.Second,
			SessionCookieName:  getEnv("SESSION_COOKIE_NAME", DefaultSessionCookieName),
			SecureCookie:       getEnv("SESSION_SECURE", "false") == "true",
			CookieDomain:       getEnv("COOKIE_DOMAIN", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
