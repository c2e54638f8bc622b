package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/models"
)

func testService() *Service {
	return NewService(arbor.NewLogger())
}

func TestExtractHTMLMainContent(t *testing.T) {
	html := `<html>
<head>
  <title>Widget Guide</title>
  <meta name="description" content="How to use widgets">
</head>
<body>
  <nav>Home Products Pricing</nav>
  <main>` + strings.Repeat("<p>Widgets are assembled from gears and springs.</p>", 10) + `</main>
  <footer>Copyright 2026</footer>
</body>
</html>`

	svc := testService()
	record, err := svc.Extract(context.Background(), []byte(html), models.ContentKindHTML, "https://example.com/widgets")
	require.NoError(t, err)

	assert.Equal(t, "Widget Guide", record.Title)
	assert.Equal(t, "How to use widgets", record.Description)
	assert.Contains(t, record.Body, "Widgets are assembled")
	assert.NotContains(t, record.Body, "Pricing")
	assert.NotContains(t, record.Body, "Copyright")
	assert.Equal(t, models.ContentKindHTML, record.Kind)
	assert.Greater(t, record.WordCount, 0)
	assert.NotEmpty(t, record.Markdown)
}

func TestExtractHTMLTitleChain(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		url   string
		title string
	}{
		{
			name:  "og title when no title tag",
			html:  `<html><head><meta property="og:title" content="OG Title"></head><body><p>x</p></body></html>`,
			url:   "https://example.com/a",
			title: "OG Title",
		},
		{
			name:  "h1 fallback",
			html:  `<html><body><h1>Heading Title</h1><p>x</p></body></html>`,
			url:   "https://example.com/a",
			title: "Heading Title",
		},
		{
			name:  "url derived",
			html:  `<html><body><p>x</p></body></html>`,
			url:   "https://example.com/getting-started_guide.html",
			title: "Getting Started Guide",
		},
		{
			name:  "url derived root",
			html:  `<html><body><p>x</p></body></html>`,
			url:   "https://example.com/",
			title: "Document",
		},
	}

	svc := testService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := svc.Extract(context.Background(), []byte(tt.html), models.ContentKindHTML, tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.title, record.Title)
		})
	}
}

func TestExtractHTMLCodeSnippets(t *testing.T) {
	html := `<html><body><main><p>` + strings.Repeat("usage docs ", 20) + `</p>
<pre><code class="language-python">def foo():
    return 1</code></pre>
<p>inline <code>x</code> token</p>
<p>long inline <code>SELECT id, name FROM users WHERE active = 1</code></p>
</main></body></html>`

	svc := testService()
	record, err := svc.Extract(context.Background(), []byte(html), models.ContentKindHTML, "https://example.com/code")
	require.NoError(t, err)

	require.Len(t, record.CodeSnippets, 2)
	assert.Equal(t, "python", record.CodeSnippets[0].Language)
	assert.Contains(t, record.CodeSnippets[0].Content, "def foo():")
	// Short inline tokens are not snippets.
	assert.Contains(t, record.CodeSnippets[1].Content, "SELECT id")
}

func TestExtractHTMLLinks(t *testing.T) {
	html := `<html><body><main><p>` + strings.Repeat("body text ", 20) + `</p>
<a href="/docs/intro">Intro</a>
<a href="https://example.com/docs/intro">Dup intro</a>
<a href="https://other.com/page">Elsewhere</a>
<a href="mailto:hi@example.com">Mail</a>
<a href="javascript:void(0)">JS</a>
</main></body></html>`

	svc := testService()
	record, err := svc.Extract(context.Background(), []byte(html), models.ContentKindHTML, "https://example.com/docs")
	require.NoError(t, err)

	require.Len(t, record.Links, 2)
	assert.Equal(t, "https://example.com/docs/intro", record.Links[0].URL)
	assert.False(t, record.Links[0].IsExternal)
	assert.Equal(t, "https://other.com/page", record.Links[1].URL)
	assert.True(t, record.Links[1].IsExternal)
}

func TestExtractHTMLParagraphFallback(t *testing.T) {
	html := `<html><body><div class="random"><p>Short page body here.</p><p>Second paragraph.</p></div></body></html>`

	svc := testService()
	record, err := svc.Extract(context.Background(), []byte(html), models.ContentKindHTML, "https://example.com/short")
	require.NoError(t, err)

	assert.Contains(t, record.Body, "Short page body here.")
	assert.Contains(t, record.Body, "Second paragraph.")
}
