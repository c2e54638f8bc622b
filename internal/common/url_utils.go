package common

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
)

// ValidateScrapeURL checks that a URL is usable as a scrape target: absolute,
// http or https, and a host that looks like a real domain. DNS resolution is
// attempted but failure only logs a warning, since transient resolver issues
// should not reject an otherwise valid URL.
func ValidateScrapeURL(rawURL string, logger arbor.ILogger) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q: only http and https are allowed", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no host")
	}

	if !strings.Contains(host, ".") && host != "localhost" {
		return fmt.Errorf("URL host %q does not look like a domain", host)
	}

	if _, err := net.LookupHost(host); err != nil {
		if logger != nil {
			logger.Warn().
				Str("host", host).
				Err(err).
				Msg("DNS resolution failed for scrape URL, continuing anyway")
		}
	}

	return nil
}

// SameDomain reports whether two URLs share a host, treating a leading
// "www." as equivalent.
func SameDomain(a, b string) bool {
	return normalizeHost(a) != "" && normalizeHost(a) == normalizeHost(b)
}

func normalizeHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
