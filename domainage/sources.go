package domainage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	registrationEventRe = regexp.MustCompile(`(?i)regist`)
	whoisCreatedRe      = regexp.MustCompile(`(?im)^\s*(?:creation date|created(?: on)?|registered(?: on)?|registration time|domain registration date|domain create date)\s*:\s*(.+?)\s*$`)
)

type rdapEvent struct {
	EventAction string `json:"eventAction"`
	EventDate   string `json:"eventDate"`
}

type rdapDomain struct {
	Events       []rdapEvent `json:"events"`
	Registration string      `json:"registration"`
}

func (c *Client) ninjaCreated(ctx context.Context, domain string) (t time.Time, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.NinjaTimeout)
	defer cancel()

	endpoint := c.cfg.NinjaBaseURL + "?domain=" + url.QueryEscape(domain)
	resp, err := c.get(ctx, c.ninja, endpoint)
	if err != nil {
		c.log.WithField("err", err.Error()).Warn("API Ninjas WHOIS failed")
		return t, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.log.WithField("err", err.Error()).Warn("API Ninjas WHOIS failed")
		return t, false
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WithFields(logrus.Fields{"status": resp.StatusCode, "body": string(body)}).Warn("API Ninjas WHOIS non-OK")
		return t, false
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		c.log.WithField("err", err.Error()).Warn("API Ninjas WHOIS failed")
		return t, false
	}
	return parseCreationDate(data)
}

func (c *Client) rdapCreated(ctx context.Context, domain string) (t time.Time, ok bool) {
	endpoint := fmt.Sprintf("%s/domain/%s", strings.TrimRight(c.cfg.RDAPBaseURL, "/"), url.PathEscape(domain))
	resp, err := c.get(ctx, c.rdap, endpoint)
	if err != nil {
		c.log.WithField("err", err.Error()).Warn("RDAP lookup failed")
		return t, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return t, false
	}

	var data rdapDomain
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&data); err != nil {
		c.log.WithField("err", err.Error()).Warn("RDAP lookup failed")
		return t, false
	}

	for _, e := range data.Events {
		if registrationEventRe.MatchString(e.EventAction) && e.EventDate != "" {
			if created, ok := parseDate(e.EventDate); ok {
				return created, true
			}
			break
		}
	}
	if data.Registration != "" {
		return parseDate(data.Registration)
	}
	return t, false
}

func (c *Client) whoisCreated(ctx context.Context, domain string) (t time.Time, ok bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return t, false
	}

	raw, err := c.whois.Whois(domain)
	if err != nil {
		c.log.WithFields(logrus.Fields{"domain": domain, "err": err.Error()}).Warn("WHOIS lookup failed")
		return t, false
	}

	m := whoisCreatedRe.FindStringSubmatch(raw)
	if m == nil {
		return t, false
	}
	return parseDate(m[1])
}

func (c *Client) get(ctx context.Context, client *http.Client, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}
