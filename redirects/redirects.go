package redirects

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxHops    = 10
	DefaultHopTimeout = 5 * time.Second
	ExcessiveAfter    = 3
)

type Result struct {
	Count     int  `json:"count"`
	Excessive bool `json:"excessive"`
}

// Inspector follows Location headers by hand, one hop at a time.
type Inspector struct {
	Client     *http.Client
	MaxHops    int
	HopTimeout time.Duration
	Log        logrus.FieldLogger
}

func New(client *http.Client, log logrus.FieldLogger) *Inspector {
	return &Inspector{
		Client:     client,
		MaxHops:    DefaultMaxHops,
		HopTimeout: DefaultHopTimeout,
		Log:        log,
	}
}

// Check counts the redirects followed from target. Any failure along the
// chain yields a zero result rather than an error.
func (in *Inspector) Check(ctx context.Context, target string) Result {
	count, err := in.follow(ctx, target)
	if err != nil {
		if in.Log != nil {
			in.Log.WithFields(logrus.Fields{"url": target, "err": err.Error()}).Warn("Redirect check failed")
		}
		return Result{}
	}
	return Result{Count: count, Excessive: count > ExcessiveAfter}
}

func (in *Inspector) follow(ctx context.Context, target string) (int, error) {
	current, err := url.Parse(target)
	if err != nil {
		return 0, err
	}

	location, err := in.hop(ctx, current)
	if err != nil {
		return 0, err
	}

	maxHops := in.MaxHops
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}

	count := 0
	for location != "" && count < maxHops {
		count++

		ref, err := url.Parse(location)
		if err != nil {
			return 0, err
		}
		next := current.ResolveReference(ref)

		location, err = in.hop(ctx, next)
		if err != nil {
			return 0, err
		}
		current = next
	}
	return count, nil
}

// hop issues a single GET and returns its Location header.
func (in *Inspector) hop(ctx context.Context, u *url.URL) (string, error) {
	timeout := in.HopTimeout
	if timeout <= 0 {
		timeout = DefaultHopTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := in.Client.Do(req)
	if err != nil {
		return "", err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()

	return resp.Header.Get("Location"), nil
}
