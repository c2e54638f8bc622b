// -----------------------------------------------------------------------
// Text Cleaning - Whitespace, boilerplate, and PII normalization
// -----------------------------------------------------------------------

package extractor

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Navigation and footer vocabulary that survives container selection on
	// poorly structured pages.
	boilerplateRe = regexp.MustCompile(`(?i)\b(home|menu|navigation|footer|copyright|privacy|terms|contact|about|login|signup|register|search)\b`)

	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	urlRe   = regexp.MustCompile(`https?://[^\s]+`)
	phoneRe = regexp.MustCompile(`\d{3}[-.]?\d{3}[-.]?\d{4}`)

	nonPrintableRe = regexp.MustCompile(`[^\x20-\x7E\n\r\t]`)
)

// CleanText normalizes extracted body text: collapses whitespace, strips
// boilerplate navigation vocabulary, redacts emails/URLs/phone numbers, and
// drops non-printable characters.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = whitespaceRe.ReplaceAllString(text, " ")
	text = boilerplateRe.ReplaceAllString(text, "")

	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	text = urlRe.ReplaceAllString(text, "[URL]")
	text = phoneRe.ReplaceAllString(text, "[PHONE]")

	text = nonPrintableRe.ReplaceAllString(text, "")

	// Boilerplate removal can leave doubled spaces behind.
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
