package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
)

const AppVersion = "1.0.0"

type Config struct {
	Port          string `default:"4000"`
	AllowedOrigin string `default:"*"`
	LogLevel      string `default:"info"`
	LandingDir    string

	CacheTTL        time.Duration `default:"15m"`
	CacheSize       int           `default:"500"`
	RateLimitMax    int           `default:"60"`
	RateLimitWindow time.Duration `default:"1m"`
	MaxURLLength    int           `default:"2048"`

	SafeBrowsingAPIKey string
	SafeBrowsingDBPath string

	WhoisNinjaAPIKey   string
	WhoisNinjaTimeout  time.Duration `default:"7s"`
	WhoisNinjaRetries  int           `default:"2"`
	RDAPBaseURL        string        `default:"https://rdap.org"`
	WhoisEnabled       bool          `default:"true"`
	WhoisRatePerSecond float64       `default:"2"`

	RedirectHopTimeout time.Duration `default:"5s"`
	RedirectMaxHops    int           `default:"10"`

	FeedDatabaseDSN string
}

// Load reads an optional .env file, applies defaults and then the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	e := envReader{getenv: getenv}
	e.str("PORT", &cfg.Port)
	e.str("ALLOWED_ORIGIN", &cfg.AllowedOrigin)
	e.str("LOG_LEVEL", &cfg.LogLevel)
	e.str("LANDING_DIR", &cfg.LandingDir)
	e.duration("CACHE_TTL_SECONDS", time.Second, &cfg.CacheTTL)
	e.int("CACHE_SIZE", &cfg.CacheSize)
	e.int("RATE_LIMIT_MAX", &cfg.RateLimitMax)
	e.duration("RATE_LIMIT_WINDOW_SECONDS", time.Second, &cfg.RateLimitWindow)
	e.int("MAX_URL_LENGTH", &cfg.MaxURLLength)
	e.str("SAFE_BROWSING_API_KEY", &cfg.SafeBrowsingAPIKey)
	e.str("SAFE_BROWSING_DB_PATH", &cfg.SafeBrowsingDBPath)
	e.str("WHOIS_NINJA_API_KEY", &cfg.WhoisNinjaAPIKey)
	e.duration("WHOIS_NINJA_TIMEOUT_MS", time.Millisecond, &cfg.WhoisNinjaTimeout)
	e.int("WHOIS_NINJA_RETRIES", &cfg.WhoisNinjaRetries)
	e.str("RDAP_BASE_URL", &cfg.RDAPBaseURL)
	e.bool("WHOIS_ENABLED", &cfg.WhoisEnabled)
	e.float("WHOIS_RATE_PER_SECOND", &cfg.WhoisRatePerSecond)
	e.duration("REDIRECT_HOP_TIMEOUT_MS", time.Millisecond, &cfg.RedirectHopTimeout)
	e.int("REDIRECT_MAX_HOPS", &cfg.RedirectMaxHops)
	e.str("FEED_DATABASE_DSN", &cfg.FeedDatabaseDSN)

	if e.err != nil {
		return nil, e.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("PORT must not be empty")
	case c.CacheTTL <= 0:
		return errors.New("CACHE_TTL_SECONDS must be positive")
	case c.CacheSize <= 0:
		return errors.New("CACHE_SIZE must be positive")
	case c.RateLimitMax <= 0:
		return errors.New("RATE_LIMIT_MAX must be positive")
	case c.RateLimitWindow <= 0:
		return errors.New("RATE_LIMIT_WINDOW_SECONDS must be positive")
	case c.MaxURLLength <= 0:
		return errors.New("MAX_URL_LENGTH must be positive")
	case c.WhoisNinjaTimeout <= 0:
		return errors.New("WHOIS_NINJA_TIMEOUT_MS must be positive")
	case c.WhoisNinjaRetries <= 0:
		return errors.New("WHOIS_NINJA_RETRIES must be positive")
	case c.WhoisRatePerSecond <= 0:
		return errors.New("WHOIS_RATE_PER_SECOND must be positive")
	case c.RedirectHopTimeout <= 0:
		return errors.New("REDIRECT_HOP_TIMEOUT_MS must be positive")
	case c.RedirectMaxHops <= 0:
		return errors.New("REDIRECT_MAX_HOPS must be positive")
	}
	return nil
}

// envReader records the first malformed variable and ignores the rest.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) lookup(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v := strings.TrimSpace(e.getenv(key))
	return v, v != ""
}

func (e *envReader) fail(key, v string, err error) {
	e.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, unit time.Duration, dst *time.Duration) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = time.Duration(n) * unit
}
