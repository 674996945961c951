// Package config loads the service's runtime configuration from the
// environment, matching the env-var surface of spec.md §6 (itself mirroring
// original_source/rickchurch/constants.py).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the fully resolved, typed configuration for the server.
type Config struct {
	Environment string // "production" or "development"
	LogLevel    string

	ListenAddr       string
	BaseURL          string
	OAuthRedirectURL string
	JWTSecret        string

	DatabaseURL string
	MinPoolSize int
	MaxPoolSize int

	CanvasBaseURL string
	CanvasToken   string
	CanvasRPS     float64
	CanvasBurst   int

	DiscordClientID     string
	DiscordClientSecret string

	ModeratorsFile string

	RefreshInterval time.Duration
	LeaseDuration   time.Duration

	DevAuthEnable bool
}

// IsDevelopment reports whether verbose, human-friendly logging should be
// used instead of the production JSON writer.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Load reads Config from the process environment, applying the defaults
// used in local development. Required production secrets (JWT_SECRET,
// DATABASE_URL, PIXELS_API_TOKEN, CLIENT_ID, CLIENT_SECRET) have no
// default and return an error if unset outside development.
func Load() (*Config, error) {
	baseURL := getenv("BASE_URL", "http://localhost:8080")

	cfg := &Config{
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "INFO"),

		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		BaseURL:          baseURL,
		OAuthRedirectURL: getenv("OAUTH_REDIRECT_URL", baseURL+"/oauth_callback"),
		JWTSecret:        getenv("JWT_SECRET", ""),

		DatabaseURL: getenv("DATABASE_URL", ""),
		MinPoolSize: getenvInt("MIN_POOL_SIZE", 2),
		MaxPoolSize: getenvInt("MAX_POOL_SIZE", 5),

		CanvasBaseURL: getenv("CANVAS_BASE_URL", "https://pixel-canvas.example.com"),
		CanvasToken:   getenv("PIXELS_API_TOKEN", ""),
		CanvasRPS:     getenvFloat("CANVAS_RATE_LIMIT_RPS", 1.0),
		CanvasBurst:   getenvInt("CANVAS_RATE_LIMIT_BURST", 5),

		DiscordClientID:     getenv("CLIENT_ID", ""),
		DiscordClientSecret: getenv("CLIENT_SECRET", ""),

		ModeratorsFile: getenv("MODERATORS_FILE", ""),

		RefreshInterval: getenvSeconds("TASK_REFRESH_TIME", 2.0),
		LeaseDuration:   getenvSeconds("TASK_PENDING_DELAY", 5.0),

		DevAuthEnable: getenvBool("DEV_AUTH_ENABLE", false),
	}

	if cfg.IsDevelopment() {
		return cfg, nil
	}

	var missing []string
	for name, v := range map[string]string{
		"JWT_SECRET":       cfg.JWTSecret,
		"DATABASE_URL":     cfg.DatabaseURL,
		"PIXELS_API_TOKEN": cfg.CanvasToken,
		"CLIENT_ID":        cfg.DiscordClientID,
		"CLIENT_SECRET":    cfg.DiscordClientSecret,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// getenvSeconds reads key as a float number of seconds (spec.md §6's
// TASK_PENDING_DELAY/TASK_REFRESH_TIME are specified in seconds, e.g.
// "5.0"), falling back to defSeconds.
func getenvSeconds(key string, defSeconds float64) time.Duration {
	seconds := getenvFloat(key, defSeconds)
	return time.Duration(seconds * float64(time.Second))
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
