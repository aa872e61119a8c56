package content

import (
	"fmt"
	"net/url"
	"strings"
)

// GetDomainFromURI returns the registrable domain of uri, e.g. "example.com"
// for "https://blog.example.com/a".
func GetDomainFromURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse URI: %w", err)
	}
	parts := strings.Split(u.Hostname(), ".")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("invalid hostname: %s", u.Hostname())
	}
	domain := parts[len(parts)-2] + "." + parts[len(parts)-1]
	return domain, nil
}

// NormalizeWebsite trims a profile website and prefixes https:// when no
// scheme is given. An empty input stays empty. Only http and https links
// with a real domain are accepted.
func NormalizeWebsite(raw string) (string, error) {
	site := strings.TrimSpace(raw)
	if site == "" {
		return "", nil
	}
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	u, err := url.Parse(site)
	if err != nil {
		return "", fmt.Errorf("failed to parse URI: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if _, err := GetDomainFromURI(site); err != nil {
		return "", err
	}
	return site, nil
}
