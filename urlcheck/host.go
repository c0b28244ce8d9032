package urlcheck

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// canonicalHost spells a URL host the way browsers report it: IDNA mapped
// to lower-case ASCII, with numeric IPv4 forms (2130706433, 0x7f.1,
// 127.1) rewritten as a dotted quad. ok is false when the host ends in a
// number but is not a valid IPv4 address, which browsers reject.
func canonicalHost(host string) (string, bool) {
	if host == "" {
		return "", true
	}
	if strings.Contains(host, ":") {
		return strings.ToLower(host), true
	}

	host = asciiHost(host)
	parts := strings.Split(host, ".")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if !endsInNumber(parts[len(parts)-1]) {
		return host, true
	}
	return ipv4FromParts(parts)
}

func endsInNumber(last string) bool {
	if last == "" {
		return false
	}
	if strings.Trim(last, "0123456789") == "" {
		return true
	}
	_, ok := ipv4Number(last)
	return ok
}

// ipv4Number parses one part of an IPv4 host: 0x for hex, a leading 0 for
// octal, decimal otherwise.
func ipv4Number(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}

	base := 10
	switch {
	case len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X"):
		s, base = s[2:], 16
		if s == "" {
			return 0, true
		}
	case len(s) >= 2 && s[0] == '0':
		s, base = s[1:], 8
	}

	n, err := strconv.ParseUint(s, base, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxUint64, true
	}
	return n, err == nil
}

func ipv4FromParts(parts []string) (string, bool) {
	if len(parts) > 4 {
		return "", false
	}

	nums := make([]uint64, len(parts))
	for i, p := range parts {
		n, ok := ipv4Number(p)
		if !ok {
			return "", false
		}
		nums[i] = n
	}

	last := len(nums) - 1
	for _, n := range nums[:last] {
		if n > 255 {
			return "", false
		}
	}
	if nums[last] >= 1<<(8*(5-len(nums))) {
		return "", false
	}

	addr := nums[last]
	for i, n := range nums[:last] {
		addr += n << (8 * (3 - i))
	}
	return fmt.Sprintf("%d.%d.%d.%d", byte(addr>>24), byte(addr>>16), byte(addr>>8), byte(addr)), true
}
