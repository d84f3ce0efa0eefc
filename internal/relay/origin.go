package relay

import (
	"net/url"
	"strings"
)

// OriginAllowlist gates the web-page hop of the relay. Patterns are
// either exact origins/hosts or a wildcard suffix ("*.vercel.app") for
// deployment previews. Anything else is dropped without a response.
type OriginAllowlist struct {
	patterns []string
}

// NewOriginAllowlist builds an allow-list from the configured patterns.
func NewOriginAllowlist(patterns []string) *OriginAllowlist {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &OriginAllowlist{patterns: cleaned}
}

// Allowed reports whether origin matches the allow-list. Matching is by
// exact origin, exact host, or wildcard host suffix.
func (a *OriginAllowlist) Allowed(origin string) bool {
	if origin == "" {
		return false
	}

	host := originHost(origin)
	for _, pattern := range a.patterns {
		if matchOrigin(origin, host, pattern) {
			return true
		}
	}
	return false
}

func matchOrigin(origin, host, pattern string) bool {
	// Exact origin match ("https://tabkeep.app")
	if origin == pattern {
		return true
	}

	// Exact host match ("tabkeep.app")
	if host == pattern {
		return true
	}

	// Wildcard match: *.vercel.app matches preview.vercel.app
	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:] // Remove * to get .vercel.app
		return strings.HasSuffix(host, suffix)
	}

	return false
}

// originHost extracts the host (no port) from an origin string.
func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Hostname()
}
