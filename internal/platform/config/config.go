package config

import (
	"os"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean and secrets never live in source.
type Server struct {
	Addr           string
	DatabaseURL    string
	RedisURL       string
	JWTSigningKey  string
	AccessTokenTTL time.Duration
	ShareBaseURL   string
}

// DefaultAccessTokenTTL matches the product default of week-long sessions.
const DefaultAccessTokenTTL = 7 * 24 * time.Hour

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:           getenv("LISTIFY_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSigningKey:  getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AccessTokenTTL: DefaultAccessTokenTTL,
		ShareBaseURL:   getenv("SHARE_BASE_URL", "https://listify.space/shared"),
	}
	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil && parsed > 0 {
			cfg.AccessTokenTTL = parsed
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
