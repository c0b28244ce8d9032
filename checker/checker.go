// Package checker runs every risk signal for a URL and turns them into a
// single decision. Threat feeds, domain age and redirect inspection run
// concurrently; each one degrades to its harmless default on failure so a
// decision is always produced.
package checker

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"safeRestServer/domainage"
	"safeRestServer/feeds"
	"safeRestServer/redirects"
	"safeRestServer/scoring"
	"safeRestServer/urlcheck"
)

const (
	DefaultCacheSize = 500
	DefaultCacheTTL  = 15 * time.Minute
)

type FeedLookup interface {
	Lookup(ctx context.Context, url string) feeds.Result
}

type AgeLookup interface {
	AgeDays(ctx context.Context, url string) *int
}

type RedirectInspector interface {
	Check(ctx context.Context, url string) redirects.Result
}

type Details struct {
	DomainAgeDays *int         `json:"domainAgeDays"`
	SafeBrowsing  feeds.Result `json:"safeBrowsing"`
	Redirects     int          `json:"redirects"`
}

type Decision struct {
	URL                string                 `json:"url"`
	Score              int                    `json:"score"`
	Action             scoring.Action         `json:"action"`
	RiskClassification scoring.Classification `json:"risk_classification"`
	RiskFactors        []scoring.Reason       `json:"risk_factors"`
	Details            Details                `json:"details"`
}

type Options struct {
	CacheSize    int
	CacheTTL     time.Duration
	MaxURLLength int
}

type Checker struct {
	Feeds     FeedLookup
	Ages      AgeLookup
	Redirects RedirectInspector

	maxURLLength int
	cache        *expirable.LRU[string, Decision]
	log          logrus.FieldLogger
}

func New(fl FeedLookup, al AgeLookup, ri RedirectInspector, opts Options, log logrus.FieldLogger) *Checker {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.MaxURLLength <= 0 {
		opts.MaxURLLength = DefaultMaxURLLength
	}
	return &Checker{
		Feeds:        fl,
		Ages:         al,
		Redirects:    ri,
		maxURLLength: opts.MaxURLLength,
		cache:        expirable.NewLRU[string, Decision](opts.CacheSize, nil, opts.CacheTTL),
		log:          log,
	}
}

func (c *Checker) Validate(raw *string) (string, error) {
	return Validate(raw, c.maxURLLength)
}

// Check returns the decision for an already validated URL and whether it
// came from the cache.
func (c *Checker) Check(ctx context.Context, url string) (*Decision, bool) {
	key := urlcheck.CacheKey(url)
	if d, ok := c.cache.Get(key); ok {
		d = d.clone()
		return &d, true
	}

	d := c.decide(ctx, url)
	c.cache.Add(key, d)
	c.log.WithFields(logrus.Fields{
		"url":    url,
		"action": d.Action,
		"score":  d.Score,
	}).Info("decision")
	d = d.clone()
	return &d, false
}

// clone copies everything a caller could mutate, so the cached entry never
// changes after it is stored.
func (d Decision) clone() Decision {
	d.RiskFactors = append([]scoring.Reason{}, d.RiskFactors...)
	if d.Details.DomainAgeDays != nil {
		days := *d.Details.DomainAgeDays
		d.Details.DomainAgeDays = &days
	}
	if d.Details.SafeBrowsing.Details != nil {
		d.Details.SafeBrowsing.Details = append([]feeds.Threat{}, d.Details.SafeBrowsing.Details...)
	}
	return d
}

func (c *Checker) decide(ctx context.Context, url string) Decision {
	syntax := urlcheck.AnalyzeURLSyntax(url)

	var (
		sb       feeds.Result
		ageDays  *int
		redirect redirects.Result
		wg       sync.WaitGroup
	)

	wg.Add(3)
	go c.signal(&wg, "feeds", func() {
		if c.Feeds != nil {
			sb = c.Feeds.Lookup(ctx, url)
		}
	})
	go c.signal(&wg, "domain_age", func() {
		if c.Ages != nil {
			ageDays = c.Ages.AgeDays(ctx, url)
		}
	})
	go c.signal(&wg, "redirects", func() {
		if c.Redirects != nil {
			redirect = c.Redirects.Check(ctx, url)
		}
	})
	wg.Wait()

	factors := scoring.Factors{
		NoHTTPS:            deref(syntax.Protocol) != "https",
		YoungDomain:        domainage.IsYoung(ageDays),
		IPObfuscation:      urlcheck.IsIPObfuscation(deref(syntax.Hostname)),
		ListedInFeeds:      sb.Listed,
		SuspiciousKeywords: urlcheck.HasSuspiciousKeywords(url),
		ExcessiveRedirects: redirect.Excessive,
	}

	res := scoring.Compute(factors)
	return Decision{
		URL:                url,
		Score:              res.Score,
		Action:             scoring.Classify(res.Score),
		RiskClassification: res.Classification,
		RiskFactors:        res.Reasons,
		Details: Details{
			DomainAgeDays: ageDays,
			SafeBrowsing:  sb,
			Redirects:     redirect.Count,
		},
	}
}

// signal runs one lookup. A panicking lookup leaves its result at the zero
// value, which is the harmless default for every signal.
func (c *Checker) signal(wg *sync.WaitGroup, name string, fn func()) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			c.log.WithFields(logrus.Fields{"signal": name, "panic": r}).Error("signal lookup panicked")
		}
	}()
	fn()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
