package builder

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL reduces a page URL to its dedup key: lowercase scheme+host,
// path with the trailing slash stripped (except root), no query or fragment.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("error parsing URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q in %q", u.Scheme, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawQuery = ""

	if u.Path == "" {
		u.Path = "/"
	} else if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// IsPageURL reports whether raw points at a publishable page rather than an
// asset or a non-HTTP link.
func IsPageURL(raw string) bool {
	if raw == "" {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}

	excludeSuffixes := []string{
		".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
		".pdf", ".zip", ".xml", ".json", ".woff", ".woff2",
	}
	lowerPath := strings.ToLower(u.Path)
	for _, suffix := range excludeSuffixes {
		if strings.HasSuffix(lowerPath, suffix) {
			return false
		}
	}
	return true
}
