package config

import (
	"os"
	"strings"
)

func boolEnv(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// SkipMigrations disables AutoMigrate on startup so DDL can run as a
// separate job instead of blocking a deploy.
//
// Set via env:
// - SKIP_MIGRATIONS=true
func SkipMigrations() bool {
	return boolEnv("SKIP_MIGRATIONS")
}

// RateLimitEnabled turns on the Redis-backed IP rate limiter.
//
// Set via env:
// - RATE_LIMIT_ENABLED=true
// - RATE_LIMIT_WINDOW_SECONDS=60
// - RATE_LIMIT_MAX_REQUESTS=600
func RateLimitEnabled() bool {
	return boolEnv("RATE_LIMIT_ENABLED")
}

// IsProduction gates production-only behavior such as the strict CORS
// allowlist.
//
// Set via env:
// - GO_ENV=production
func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}
