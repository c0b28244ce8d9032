package feeds

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/safebrowsing"
	"github.com/sirupsen/logrus"
)

const (
	SafeBrowsingSource  = "google_safebrowsing"
	safeBrowsingTimeout = 5 * time.Second
	readyTimeout        = 10 * time.Second
)

var threatLists = []safebrowsing.ThreatDescriptor{
	{ThreatType: safebrowsing.ThreatType_Malware, PlatformType: safebrowsing.PlatformType_AnyPlatform, ThreatEntryType: safebrowsing.ThreatEntryType_URL},
	{ThreatType: safebrowsing.ThreatType_SocialEngineering, PlatformType: safebrowsing.PlatformType_AnyPlatform, ThreatEntryType: safebrowsing.ThreatEntryType_URL},
	{ThreatType: safebrowsing.ThreatType_UnwantedSoftware, PlatformType: safebrowsing.PlatformType_AnyPlatform, ThreatEntryType: safebrowsing.ThreatEntryType_URL},
	{ThreatType: safebrowsing.ThreatType_PotentiallyHarmfulApplication, PlatformType: safebrowsing.PlatformType_AnyPlatform, ThreatEntryType: safebrowsing.ThreatEntryType_URL},
}

type urlLookuper interface {
	LookupURLsContext(ctx context.Context, urls []string) ([][]safebrowsing.URLThreat, error)
}

type readyWaiter interface {
	WaitUntilReady(ctx context.Context) error
}

type SafeBrowsingConfig struct {
	APIKey  string
	DBPath  string
	Version string
	Timeout time.Duration
	// ReadyTimeout bounds how long construction waits for the first
	// database sync.
	ReadyTimeout time.Duration
}

// SafeBrowsing checks URLs against Google's Safe Browsing lists. Without an
// API key every lookup reports NoteAPIKeyMissing; until the local database
// has synced every lookup reports NoteNotReady.
type SafeBrowsing struct {
	sb      urlLookuper
	ready   <-chan struct{} // nil means ready
	closer  func() error
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewSafeBrowsing(cfg SafeBrowsingConfig, log *logrus.Logger) (*SafeBrowsing, error) {
	s := &SafeBrowsing{timeout: cfg.Timeout, log: log}
	if s.timeout <= 0 {
		s.timeout = safeBrowsingTimeout
	}
	if cfg.APIKey == "" {
		log.Warn("Safe Browsing API key not configured")
		return s, nil
	}

	w := log.WriterLevel(logrus.DebugLevel)
	sb, err := safebrowsing.NewSafeBrowser(safebrowsing.Config{
		ID:          "safeRestServer",
		Version:     cfg.Version,
		APIKey:      cfg.APIKey,
		DBPath:      cfg.DBPath,
		ThreatLists: threatLists,
		Logger:      w,
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	wait := cfg.ReadyTimeout
	if wait <= 0 {
		wait = readyTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.sb = sb
	s.ready = watchReady(ctx, sb, wait, log)
	s.closer = func() error {
		cancel()
		defer w.Close()
		return sb.Close()
	}
	return s, nil
}

// watchReady closes the returned channel once w is ready. It blocks for at
// most wait; the watch itself lasts until ctx is done.
func watchReady(ctx context.Context, w readyWaiter, wait time.Duration, log logrus.FieldLogger) <-chan struct{} {
	ready := make(chan struct{})
	go func() {
		if err := w.WaitUntilReady(ctx); err != nil {
			return
		}
		close(ready)
		log.Info("Safe Browsing database ready")
	}()

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ready:
	case <-t.C:
		log.WithField("waited", wait.String()).Warn("Safe Browsing database not ready, lookups skipped until it syncs")
	}
	return ready
}

func (s *SafeBrowsing) isReady() bool {
	if s.ready == nil {
		return true
	}
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

func (s *SafeBrowsing) Lookup(ctx context.Context, url string) Result {
	if s.sb == nil {
		return Result{Source: SafeBrowsingSource, Note: NoteAPIKeyMissing}
	}
	if !s.isReady() {
		return Result{Source: SafeBrowsingSource, Note: NoteNotReady}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	threats, err := s.sb.LookupURLsContext(ctx, []string{url})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.log.Warn("SafeBrowsing API request timeout")
			return Result{Source: SafeBrowsingSource, Note: NoteTimeout}
		}
		// The library reports a database that missed its updates as stale.
		if strings.Contains(err.Error(), "stale") {
			s.log.Warn("Safe Browsing database is stale")
			return Result{Source: SafeBrowsingSource, Note: NoteNotReady}
		}
		s.log.WithField("err", err.Error()).Error("SafeBrowsing check failed")
		return Result{Source: SafeBrowsingSource, Note: NoteException}
	}

	details := []Threat{}
	if len(threats) > 0 {
		for _, t := range threats[0] {
			details = append(details, Threat{
				ThreatType:   t.ThreatType.String(),
				PlatformType: t.PlatformType.String(),
			})
		}
	}

	return Result{
		Listed:  len(details) > 0,
		Details: details,
		Source:  SafeBrowsingSource,
	}
}

func (s *SafeBrowsing) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
