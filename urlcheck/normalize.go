package urlcheck

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// CacheKey folds case and IDNA spelling of the host so that equivalent
// URLs share one cache entry. Unparseable input keys on the trimmed string.
func CacheKey(s string) string {
	s = Normalize(s)
	u, ok := parseAbsolute(s)
	if !ok || u.Host == "" {
		return "check:" + s
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := asciiHost(u.Hostname())
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}
	return "check:" + u.String()
}

// RegistrableDomain returns the eTLD+1 of the URL's host, or "" for IP
// literals, single-label hosts and unparseable input.
func RegistrableDomain(s string) string {
	u, ok := parseAbsolute(s)
	if !ok {
		return ""
	}

	host, ok := canonicalHost(u.Hostname())
	if !ok || host == "" || net.ParseIP(host) != nil {
		return ""
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return domain
}

func asciiHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		return ascii
	}
	return host
}

// HostOf returns the canonical hostname of s, or "".
func HostOf(s string) string {
	u, ok := parseAbsolute(s)
	if !ok {
		return ""
	}
	host, ok := canonicalHost(u.Hostname())
	if !ok {
		return ""
	}
	return host
}
