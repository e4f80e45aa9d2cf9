package sanitizer

import (
	"net/url"
	"strings"
)

// NormalizeLink trims a meeting link and adds "https://" when it has no
// scheme. Links that already carry a scheme are returned as entered. An
// unparsable link, or a web link without a host, yields "".
func NormalizeLink(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	if !hasScheme(s) {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" || strings.ContainsAny(u.Host, " \t") {
			return ""
		}
	}
	return s
}

// hasScheme reports whether s starts with "<scheme>://" per RFC 3986.
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
