package checker

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"safeRestServer/config"
	"safeRestServer/db"
	"safeRestServer/domainage"
	"safeRestServer/feeds"
	"safeRestServer/httpclient"
	"safeRestServer/redirects"
)

// FromConfig builds a Checker backed by the real lookups. The returned
// function releases the feed database and the Safe Browsing store.
func FromConfig(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Checker, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.WithField("err", err.Error()).Warn("close failed")
			}
		}
	}

	sb, err := feeds.NewSafeBrowsing(feeds.SafeBrowsingConfig{
		APIKey:  cfg.SafeBrowsingAPIKey,
		DBPath:  cfg.SafeBrowsingDBPath,
		Version: config.AppVersion,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("safe browsing: %w", err)
	}
	closers = append(closers, sb.Close)
	lookups := feeds.Multi{sb}

	if cfg.FeedDatabaseDSN != "" {
		con, err := db.ConnectToDb(ctx, cfg.FeedDatabaseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("feed database: %w", err)
		}
		closers = append(closers, con.Close)
		lookups = append(lookups, &feeds.Blocklist{Store: con, Log: log})
		log.Info("local blocklist enabled")
	}

	ages := domainage.New(domainage.Config{
		NinjaAPIKey:   cfg.WhoisNinjaAPIKey,
		NinjaTimeout:  cfg.WhoisNinjaTimeout,
		NinjaAttempts: cfg.WhoisNinjaRetries,
		RDAPBaseURL:   cfg.RDAPBaseURL,
		WhoisEnabled:  cfg.WhoisEnabled,
		WhoisPerSec:   cfg.WhoisRatePerSecond,
	}, log)

	inspector := redirects.New(httpclient.New(httpclient.Config{Timeout: cfg.RedirectHopTimeout}), log)
	inspector.MaxHops = cfg.RedirectMaxHops
	inspector.HopTimeout = cfg.RedirectHopTimeout

	chk := New(lookups, ages, inspector, Options{
		CacheSize:    cfg.CacheSize,
		CacheTTL:     cfg.CacheTTL,
		MaxURLLength: cfg.MaxURLLength,
	}, log)
	return chk, cleanup, nil
}
