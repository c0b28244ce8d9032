package urlcheck

import "strings"

var suspiciousKeywords = [...]string{
	"login", "verify", "update", "secure", "bank", "account", "paypal", "free", "bonus", "win", "prize",
}

// SuspiciousKeywords returns a copy of the keyword list.
func SuspiciousKeywords() []string {
	out := make([]string, len(suspiciousKeywords))
	copy(out, suspiciousKeywords[:])
	return out
}

func HasSuspiciousKeywords(s string) bool {
	lower := strings.ToLower(s)
	for _, k := range suspiciousKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
