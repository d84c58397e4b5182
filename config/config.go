package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all web front configuration.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Session   SessionConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Journal   JournalConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

// APIConfig points at the external caravan API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	// LogoutPath is the backend endpoint that invalidates the session
	// cookie. Empty when the backend has none.
	LogoutPath string
}

type SessionConfig struct {
	CookieName    string
	IdleTTL       time.Duration
	SweepInterval time.Duration
	SecureCookie  bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// JournalConfig enables the booking journal when DSN is set.
type JournalConfig struct {
	DSN    string
	DBName string
	err    error
}

func (j JournalConfig) Enabled() bool { return j.DSN != "" }

// Load reads configuration from environment variables.
func Load() *Config {
	dsn, dbName, dsnErr := ResolveMySQLDSN()

	return &Config{
		Server: ServerConfig{
			Port:        envOrDefault("PORT", "8080"),
			Environment: envOrDefault("ENVIRONMENT", "development"),
		},
		API: APIConfig{
			BaseURL:    envOrDefault("CARAVAN_API_URL", "http://localhost:8000"),
			Timeout:    parseDuration(os.Getenv("CARAVAN_API_TIMEOUT"), 10*time.Second),
			LogoutPath: strings.TrimSpace(os.Getenv("CARAVAN_LOGOUT_PATH")),
		},
		Session: SessionConfig{
			CookieName:    envOrDefault("SESSION_COOKIE_NAME", "cs_sid"),
			IdleTTL:       parseDuration(os.Getenv("SESSION_IDLE_TTL"), 2*time.Hour),
			SweepInterval: parseDuration(os.Getenv("SESSION_SWEEP_INTERVAL"), 10*time.Minute),
			SecureCookie:  parseBool(os.Getenv("SESSION_COOKIE_SECURE"), false),
		},
		CORS: CORSConfig{
			AllowedOrigins: ParseOrigins(os.Getenv("CORS_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Requests: parseInt(os.Getenv("LOGIN_RATE_LIMIT"), 10),
			Window:   parseDuration(os.Getenv("LOGIN_RATE_WINDOW"), time.Minute),
		},
		Journal: JournalConfig{
			DSN:    dsn,
			DBName: dbName,
			err:    dsnErr,
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: CARAVAN_API_URL must be an absolute http(s) url, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: CARAVAN_API_TIMEOUT must be positive")
	}
	if c.API.LogoutPath != "" && !strings.HasPrefix(c.API.LogoutPath, "/") {
		return fmt.Errorf("config: CARAVAN_LOGOUT_PATH must start with /")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return fmt.Errorf("config: SESSION_COOKIE_NAME must not be empty")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("config: login rate limit must be positive")
	}
	if c.Journal.err != nil {
		return fmt.Errorf("config: booking journal dsn: %w", c.Journal.err)
	}
	if c.IsProduction() && !c.Session.SecureCookie {
		return fmt.Errorf("config: SESSION_COOKIE_SECURE must be true in production")
	}
	return nil
}

// ParseOrigins splits a comma separated CORS origin list. Empty input means
// any origin.
func ParseOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func parseInt(s string, def int) int {
	if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return i
	}
	return def
}

func parseBool(s string, def bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		return b
	}
	return def
}

// parseDuration accepts Go durations ("30s", "2h") or a bare number of seconds.
func parseDuration(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if i, err := strconv.Atoi(s); err == nil {
		return time.Duration(i) * time.Second
	}
	return def
}
