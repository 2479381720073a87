package config

import (
	"os"
	"strings"
)

// Config holds the core runtime configuration for the gateway.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	ListenAddr string

	// Environment is the deployment environment designation ("development",
	// "preview", "production", ...). The access gate hard-blocks "production".
	Environment string

	// AllowedEnvs lists the non-development environments that may reach the
	// analytics routes. Unlisted environments are denied.
	AllowedEnvs []string

	// AnalyticsSecret is the shared bearer secret for the analytics route.
	// If empty, authentication is disabled and every request is denied.
	AnalyticsSecret string

	// RefreshSecret is the bearer secret for the refresh-trigger route.
	RefreshSecret string

	// RedisURL points at the counter store. If empty, rate limiting runs on
	// the in-process fallback only and all counter reads degrade to zero.
	RedisURL string

	DatabaseURL string
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		ListenAddr:      getenv("APP_LISTEN_ADDR", ":8080"),
		Environment:     getenv("APP_ENV", "development"),
		AnalyticsSecret: os.Getenv("APP_ANALYTICS_SECRET"),
		RefreshSecret:   os.Getenv("APP_REFRESH_SECRET"),
		RedisURL:        os.Getenv("APP_REDIS_URL"),
		DatabaseURL:     os.Getenv("APP_DATABASE_URL"),
	}

	if v := os.Getenv("APP_ALLOWED_ENVS"); v != "" {
		for _, env := range strings.Split(v, ",") {
			if env = strings.TrimSpace(env); env != "" {
				cfg.AllowedEnvs = append(cfg.AllowedEnvs, env)
			}
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
