// -----------------------------------------------------------------------
// Header Profiles - Browser identities tried in order when fetching
// -----------------------------------------------------------------------

package fetcher

// HeaderProfile is one browser identity the fetcher presents. Profiles are
// tried in order; sites that block one identity often serve another.
type HeaderProfile struct {
	Name    string
	Headers map[string]string
}

// headerProfiles are ordered from most to least browser-like. The last
// profile identifies the service honestly for sites that prefer declared
// bots.
var headerProfiles = []HeaderProfile{
	{
		Name: "modern-browser",
		Headers: map[string]string{
			"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language":           "en-US,en;q=0.9",
			"DNT":                       "1",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
			"Cache-Control":             "max-age=0",
		},
	},
	{
		Name: "mobile",
		Headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
	},
	{
		Name: "bot-friendly",
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (compatible; DocifyBot/1.0; +https://docify.app)",
			"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		},
	},
}

// Profiles returns the ordered header profiles.
func Profiles() []HeaderProfile {
	return headerProfiles
}
