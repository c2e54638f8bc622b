// -----------------------------------------------------------------------
// HTML Extraction - Title/description chains, main content selection,
// code snippets, links, and markdown conversion
// -----------------------------------------------------------------------

package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/docify/internal/models"
)

// mainContentSelectors are tried in order; the first whose text clears the
// minimum wins. Covers semantic HTML plus the common CMS class names.
var mainContentSelectors = []string{
	"main",
	"[role=main]",
	".content",
	".main-content",
	"#content",
	"#main",
	"article",
	".article-content",
	".post-content",
	".entry-content",
	".page-content",
	".text-content",
}

const (
	minMainContentChars = 100
	maxCodeSnippets     = 20
	maxLinks            = 50
)

func (s *Service) extractHTML(raw []byte, pageURL string) (*models.ContentRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := extractTitle(doc, pageURL)
	description := extractDescription(doc)
	snippets := extractCodeSnippets(doc)
	links := extractPageLinks(doc, pageURL)

	// Strip chrome before content selection so nav text never wins a
	// selector.
	doc.Find("script, style, nav, footer, aside, header, noscript").Remove()

	contentSel := selectMainContent(doc)

	var body, markdown string
	if contentSel != nil {
		body = contentSel.Text()
		if html, err := goquery.OuterHtml(contentSel); err == nil {
			markdown = convertToMarkdown(html)
		}
	} else {
		// No container cleared the bar: paragraphs, then whole body.
		var parts []string
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			body = strings.Join(parts, " ")
		} else {
			body = doc.Find("body").Text()
		}
	}

	cleaned := CleanText(body)

	return &models.ContentRecord{
		URL:          pageURL,
		Title:        title,
		Description:  description,
		Body:         cleaned,
		Markdown:     markdown,
		WordCount:    CountWords(cleaned),
		Kind:         models.ContentKindHTML,
		CodeSnippets: snippets,
		Links:        links,
	}, nil
}

func selectMainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range mainContentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if len(strings.TrimSpace(sel.Text())) > minMainContentChars {
			return sel
		}
	}
	return nil
}

func extractTitle(doc *goquery.Document, pageURL string) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title, ok := doc.Find(`meta[name="twitter:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	return titleFromURL(pageURL)
}

// titleFromURL derives a readable title from the URL's last path segment.
func titleFromURL(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "Document"
	}

	segment := path.Base(strings.TrimSuffix(parsed.Path, "/"))
	segment = strings.TrimSuffix(segment, path.Ext(segment))
	if segment == "" || segment == "." || segment == "/" {
		return "Document"
	}

	segment = strings.ReplaceAll(segment, "-", " ")
	segment = strings.ReplaceAll(segment, "_", " ")

	words := strings.Fields(segment)
	if len(words) == 0 {
		return "Document"
	}
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func extractDescription(doc *goquery.Document) string {
	for _, selector := range []string{
		`meta[name="description"]`,
		`meta[property="og:description"]`,
		`meta[name="twitter:description"]`,
	} {
		if desc, ok := doc.Find(selector).Attr("content"); ok && strings.TrimSpace(desc) != "" {
			return strings.TrimSpace(desc)
		}
	}
	return ""
}

func extractCodeSnippets(doc *goquery.Document) []models.CodeSnippet {
	var snippets []models.CodeSnippet
	seen := make(map[string]bool)

	doc.Find("pre code").Each(func(_ int, code *goquery.Selection) {
		if len(snippets) >= maxCodeSnippets {
			return
		}
		content := strings.TrimSpace(code.Text())
		if content == "" || seen[content] {
			return
		}
		seen[content] = true
		snippets = append(snippets, models.CodeSnippet{
			Content:  content,
			Language: languageFromClass(code),
		})
	})

	// Bare <code> runs long enough to be real samples, not inline tokens.
	doc.Find("code").Each(func(_ int, code *goquery.Selection) {
		if len(snippets) >= maxCodeSnippets {
			return
		}
		if code.ParentsFiltered("pre").Length() > 0 {
			return
		}
		content := strings.TrimSpace(code.Text())
		if len(content) <= 10 || seen[content] {
			return
		}
		seen[content] = true
		snippets = append(snippets, models.CodeSnippet{Content: content})
	})

	return snippets
}

func languageFromClass(sel *goquery.Selection) string {
	class, _ := sel.Attr("class")
	for _, token := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(token, "language-"); ok {
			return lang
		}
		if lang, ok := strings.CutPrefix(token, "lang-"); ok {
			return lang
		}
	}
	return ""
}

func extractPageLinks(doc *goquery.Document, pageURL string) []models.Link {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []models.Link
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if len(links) >= maxLinks {
			return
		}

		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || shouldSkipHref(href) {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		resolved.Fragment = ""
		absolute := resolved.String()
		if absolute == "" || seen[absolute] {
			return
		}
		seen[absolute] = true

		links = append(links, models.Link{
			URL:        absolute,
			Text:       strings.TrimSpace(a.Text()),
			IsExternal: !strings.EqualFold(resolved.Hostname(), base.Hostname()),
		})
	})

	return links
}

func shouldSkipHref(href string) bool {
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "sms:", "data:", "ftp:", "#"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func convertToMarkdown(html string) string {
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(markdown)
}
