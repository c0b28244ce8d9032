package domainage

import (
	"strconv"
	"strings"
	"time"
)

var creationKeys = []string{
	"creation_date", "creationDate", "createdDate", "created", "Creation Date", "Created",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"2006/01/02",
	"January 2 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// parseCreationDate looks for a registration date among the field names
// WHOIS APIs commonly use, descending into a nested whois_record.
func parseCreationDate(obj map[string]any) (time.Time, bool) {
	for _, k := range creationKeys {
		if v, ok := obj[k]; ok && v != nil {
			return parseDateValue(v)
		}
	}
	if nested, ok := obj["whois_record"].(map[string]any); ok {
		return parseCreationDate(nested)
	}
	return time.Time{}, false
}

func parseDateValue(v any) (time.Time, bool) {
	switch val := v.(type) {
	case float64:
		return fromUnix(val), true
	case string:
		return parseDate(val)
	case []any:
		if len(val) > 0 {
			return parseDateValue(val[0])
		}
	}
	return time.Time{}, false
}

// fromUnix treats values too large to be seconds as milliseconds.
func fromUnix(v float64) time.Time {
	if v > 1e11 {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromUnix(n), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
