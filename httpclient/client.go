package httpclient

import (
	"net"
	"net/http"
	"time"
)

const DefaultUserAgent = "safeRestServer/1.0"

// Config holds settings for outbound HTTP clients.
type Config struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Headers    http.Header
	UserAgent  string
	Transport  http.RoundTripper
}

// retryRoundTripper injects headers and retries requests that failed at
// the transport level. HTTP error statuses are returned as-is.
type retryRoundTripper struct {
	base      http.RoundTripper
	headers   http.Header
	userAgent string
	retries   int
	delay     time.Duration
}

func (t *retryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var err error
	for attempt := 0; ; attempt++ {
		r := req.Clone(req.Context())
		if req.Body != nil && req.GetBody != nil {
			if body, berr := req.GetBody(); berr == nil {
				r.Body = body
			}
		}

		for k, vs := range t.headers {
			r.Header.Del(k)
			for _, v := range vs {
				r.Header.Add(k, v)
			}
		}
		if r.Header.Get("User-Agent") == "" && t.userAgent != "" {
			r.Header.Set("User-Agent", t.userAgent)
		}

		var resp *http.Response
		resp, err = t.base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}

		// a body without GetBody cannot be replayed
		if attempt >= t.retries || (req.Body != nil && req.GetBody == nil) {
			return nil, err
		}

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(t.delay):
		}
	}
}

// New returns a client that never follows redirects on its own.
func New(cfg Config) *http.Client {
	base := cfg.Transport
	if base == nil {
		base = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &http.Client{
		Transport: &retryRoundTripper{
			base:      base,
			headers:   cfg.Headers,
			userAgent: ua,
			retries:   cfg.Retries,
			delay:     cfg.RetryDelay,
		},
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
