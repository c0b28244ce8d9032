package feeds

import (
	"context"

	"github.com/sirupsen/logrus"

	"safeRestServer/db"
	"safeRestServer/urlcheck"
)

const BlocklistSource = "local_blocklist"

type HostStore interface {
	LookupHost(ctx context.Context, host, domain string) ([]db.FeedEntry, error)
}

// Blocklist matches a URL's host and registrable domain against a locally
// curated feed table.
type Blocklist struct {
	Store HostStore
	Log   logrus.FieldLogger
}

func (b *Blocklist) Lookup(ctx context.Context, url string) Result {
	host := urlcheck.HostOf(url)
	if host == "" {
		return Result{Source: BlocklistSource}
	}

	entries, err := b.Store.LookupHost(ctx, host, urlcheck.RegistrableDomain(url))
	if err != nil {
		b.Log.WithFields(logrus.Fields{"host": host, "err": err.Error()}).Warn("Blocklist lookup failed")
		return Result{Source: BlocklistSource, Note: NoteException}
	}

	res := Result{Source: BlocklistSource, Listed: len(entries) > 0, Details: make([]Threat, 0, len(entries))}
	for _, e := range entries {
		platform := "ANY_PLATFORM"
		if e.PlatformType.Valid && e.PlatformType.String != "" {
			platform = e.PlatformType.String
		}
		res.Details = append(res.Details, Threat{ThreatType: e.ThreatType, PlatformType: platform})
	}
	return res
}
