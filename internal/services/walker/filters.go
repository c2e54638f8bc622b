package walker

import (
	"net/url"
	"strings"

	"github.com/ternarybob/docify/internal/common"
)

// excludedPathPrefixes lists path segments that never lead to useful
// documentation content.
var excludedPathPrefixes = []string{
	"/search",
	"/login",
	"/admin",
	"/wp-admin",
	"/api/",
	"/feed",
	"/tag/",
	"/category/",
	"/author/",
}

// FilterResult reports whether a link should be enqueued and why not.
type FilterResult struct {
	ShouldEnqueue bool
	Reason        string
}

// LinkFilter decides which discovered links join the crawl frontier.
type LinkFilter struct {
	seedURL string
}

func NewLinkFilter(seedURL string) *LinkFilter {
	return &LinkFilter{seedURL: seedURL}
}

// FilterURL applies the frontier rules: same domain as the seed, http(s)
// scheme, and no excluded path segment.
func (f *LinkFilter) FilterURL(rawURL string) FilterResult {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return FilterResult{ShouldEnqueue: false, Reason: "unparseable URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return FilterResult{ShouldEnqueue: false, Reason: "non-http scheme"}
	}
	if !common.SameDomain(f.seedURL, rawURL) {
		return FilterResult{ShouldEnqueue: false, Reason: "outside seed domain"}
	}

	path := strings.ToLower(parsed.Path)
	for _, prefix := range excludedPathPrefixes {
		if strings.Contains(path, prefix) {
			return FilterResult{ShouldEnqueue: false, Reason: "excluded path: " + prefix}
		}
	}

	return FilterResult{ShouldEnqueue: true}
}
