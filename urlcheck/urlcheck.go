package urlcheck

import (
	"net/url"
	"regexp"
	"strings"
)

var ipPattern = regexp.MustCompile(`(\d{1,3}\.){3}\d{1,3}`)

// schemes whose empty path reads as "/"
var specialSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ws":    true,
	"wss":   true,
	"file":  true,
}

// schemes that always carry a host; browsers tolerate missing or extra
// slashes after their colon
var authoritySchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ws":    true,
	"wss":   true,
}

type SyntaxInfo struct {
	Protocol *string `json:"protocol"`
	Hostname *string `json:"hostname"`
	Path     *string `json:"path"`
}

func (s SyntaxInfo) Valid() bool {
	return s.Protocol != nil
}

func parseAbsolute(s string) (*url.URL, bool) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return nil, false
	}

	// http:example.com and https:/example.com name the host example.com.
	scheme := strings.ToLower(u.Scheme)
	if u.Host == "" && authoritySchemes[scheme] {
		rest := strings.TrimLeft(s[len(u.Scheme)+1:], `/\`)
		if rest == "" {
			return u, true
		}
		if u, err = url.Parse(scheme + "://" + rest); err != nil {
			return nil, false
		}
	}
	return u, true
}

// IsValidURL reports whether s is an absolute http or https URL.
func IsValidURL(s string) bool {
	u, ok := parseAbsolute(s)
	if !ok {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}

	if u.Hostname() == "" {
		return false
	}
	_, ok = canonicalHost(u.Hostname())
	return ok
}

// AnalyzeURLSyntax splits s into protocol, hostname and path+query. All
// fields are nil when s does not parse as an absolute URL. The hostname is
// canonical, so numeric and full-width IPv4 spellings come back dotted.
func AnalyzeURLSyntax(s string) SyntaxInfo {
	u, ok := parseAbsolute(s)
	if !ok {
		return SyntaxInfo{}
	}

	protocol := strings.ToLower(u.Scheme)
	hostname, ok := canonicalHost(u.Hostname())
	if !ok {
		return SyntaxInfo{}
	}

	path := u.EscapedPath()
	if u.Opaque != "" {
		path = u.Opaque
	} else if path == "" && specialSchemes[protocol] {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return SyntaxInfo{
		Protocol: &protocol,
		Hostname: &hostname,
		Path:     &path,
	}
}

// IsIPObfuscation matches a dotted quad anywhere in the hostname, so hosts
// like 125.0.0.1.com count as well as bare addresses.
func IsIPObfuscation(hostname string) bool {
	if hostname == "" {
		return false
	}
	return ipPattern.MatchString(hostname)
}
