package authentication

import (
	"net/url"
	"strings"
)

// SanitizeNext returns next when it is a same-origin relative path, otherwise fallback.
// Protocol-relative values ("//host", "/\host") are rejected.
func SanitizeNext(next, fallback string) string {
	if fallback == "" {
		fallback = DefaultNextPath
	}

	if next == "" || !strings.HasPrefix(next, "/") {
		return fallback
	}

	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return fallback
	}

	for _, r := range next {
		if r < 0x20 || r == 0x7f || r == '\\' {
			return fallback
		}
	}

	parsed, err := url.Parse(next)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" || parsed.User != nil {
		return fallback
	}

	return next
}
