// Package domainage estimates how long ago a URL's registrable domain was
// registered. Sources are tried in order (API Ninjas when a key is
// configured, then RDAP, then raw WHOIS) and every failure falls through to
// the next one; when none answers the age is unknown.
package domainage

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/likexian/whois"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"safeRestServer/httpclient"
	"safeRestServer/urlcheck"
)

// Domains younger than this many days count as young.
const YoungDomainDays = 180

const (
	DefaultNinjaBaseURL = "https://api.api-ninjas.com/v1/whois"
	DefaultRDAPBaseURL  = "https://rdap.org"

	rdapTimeout  = 8 * time.Second
	whoisTimeout = 10 * time.Second
	retryDelay   = 500 * time.Millisecond
	maxBodySize  = 1 << 20
)

type Config struct {
	NinjaAPIKey   string
	NinjaBaseURL  string
	NinjaTimeout  time.Duration
	NinjaAttempts int
	RDAPBaseURL   string
	WhoisEnabled  bool
	WhoisPerSec   float64
}

type whoisQuerier interface {
	Whois(domain string, servers ...string) (string, error)
}

type Client struct {
	cfg     Config
	ninja   *http.Client
	rdap    *http.Client
	whois   whoisQuerier
	limiter *rate.Limiter
	now     func() time.Time
	log     logrus.FieldLogger
}

func New(cfg Config, log logrus.FieldLogger) *Client {
	if cfg.NinjaBaseURL == "" {
		cfg.NinjaBaseURL = DefaultNinjaBaseURL
	}
	if cfg.RDAPBaseURL == "" {
		cfg.RDAPBaseURL = DefaultRDAPBaseURL
	}
	if cfg.NinjaTimeout <= 0 {
		cfg.NinjaTimeout = 7 * time.Second
	}
	if cfg.NinjaAttempts <= 0 {
		cfg.NinjaAttempts = 2
	}
	if cfg.WhoisPerSec <= 0 {
		cfg.WhoisPerSec = 2
	}

	wc := whois.NewClient()
	wc.SetTimeout(whoisTimeout)

	return &Client{
		cfg: cfg,
		ninja: httpclient.New(httpclient.Config{
			Timeout:    cfg.NinjaTimeout,
			Retries:    cfg.NinjaAttempts - 1,
			RetryDelay: retryDelay,
			Headers:    http.Header{"X-Api-Key": []string{cfg.NinjaAPIKey}},
		}),
		rdap: httpclient.New(httpclient.Config{
			Timeout:    rdapTimeout,
			Retries:    1,
			RetryDelay: retryDelay,
			Headers:    http.Header{"Accept": []string{"application/rdap+json, application/json"}},
		}),
		whois:   wc,
		limiter: rate.NewLimiter(rate.Limit(cfg.WhoisPerSec), 1),
		now:     time.Now,
		log:     log,
	}
}

// AgeDays returns the number of whole days since the domain of rawURL was
// registered, or nil when no source could tell.
func (c *Client) AgeDays(ctx context.Context, rawURL string) *int {
	domain := urlcheck.RegistrableDomain(rawURL)
	if domain == "" {
		return nil
	}

	if c.cfg.NinjaAPIKey != "" {
		if !looksLikeNinjaKey(c.cfg.NinjaAPIKey) {
			c.log.WithField("keySample", keySample(c.cfg.NinjaAPIKey)).Warn("WHOIS_NINJA_API_KEY appears malformed")
		}
		if created, ok := c.ninjaCreated(ctx, domain); ok {
			return c.days(created)
		}
	}

	if created, ok := c.rdapCreated(ctx, domain); ok {
		return c.days(created)
	}

	if c.cfg.WhoisEnabled {
		if created, ok := c.whoisCreated(ctx, domain); ok {
			return c.days(created)
		}
	}

	return nil
}

func (c *Client) days(created time.Time) *int {
	d := int(math.Floor(c.now().Sub(created).Hours() / 24))
	return &d
}

// IsYoung reports whether a known age is under YoungDomainDays. Unknown ages
// are never young.
func IsYoung(days *int) bool {
	return days != nil && *days < YoungDomainDays
}

func looksLikeNinjaKey(k string) bool {
	return len(k) >= 10 && !strings.Contains(k, " ")
}

func keySample(k string) string {
	if len(k) > 8 {
		k = k[:8]
	}
	return k + "..."
}
