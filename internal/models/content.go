package models

// ContentKind classifies fetched content by format.
type ContentKind string

const (
	ContentKindHTML  ContentKind = "html"
	ContentKindPDF   ContentKind = "pdf"
	ContentKindDoc   ContentKind = "doc"
	ContentKindExcel ContentKind = "excel"
	ContentKindCSV   ContentKind = "csv"
	ContentKindJSON  ContentKind = "json"
	ContentKindXML   ContentKind = "xml"
	ContentKindFeed  ContentKind = "feed"
	ContentKindText  ContentKind = "text"
)

// CodeSnippet is a code sample lifted from a page.
type CodeSnippet struct {
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

// Link is an outbound reference found on a page.
type Link struct {
	URL        string `json:"url"`
	Text       string `json:"text,omitempty"`
	IsExternal bool   `json:"is_external"`
}

// ContentRecord is the normalized extraction result for a single URL.
// Body is cleaned plain text: whitespace collapsed, boilerplate stripped,
// emails/URLs/phone numbers redacted. Records are not modified after
// extraction.
type ContentRecord struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body"`

	// Markdown holds the html-to-markdown conversion of the main content
	// area. Only set for HTML pages.
	Markdown string `json:"markdown,omitempty"`

	WordCount int         `json:"word_count"`
	Kind      ContentKind `json:"kind"`

	CodeSnippets []CodeSnippet `json:"code_snippets,omitempty"`
	Links        []Link        `json:"links,omitempty"`

	// KindMetadata carries format-specific details (page counts, sheet
	// names, row counts).
	KindMetadata map[string]interface{} `json:"kind_metadata,omitempty"`
}

// SubpageRef is a lightweight reference to a crawled page.
type SubpageRef struct {
	URL       string      `json:"url"`
	Title     string      `json:"title"`
	WordCount int         `json:"word_count"`
	Kind      ContentKind `json:"kind"`
}

// CrawlResult aggregates a site walk. CombinedBody groups page bodies by
// kind under section headers and is capped; Truncated is set when the cap
// was hit.
type CrawlResult struct {
	SeedURL        string              `json:"seed_url"`
	PagesCrawled   int                 `json:"pages_crawled"`
	TotalWordCount int                 `json:"total_word_count"`
	CombinedBody   string              `json:"combined_body"`
	Truncated      bool                `json:"truncated"`
	KindCounts     map[ContentKind]int `json:"kind_counts,omitempty"`
	Subpages       []SubpageRef        `json:"subpages,omitempty"`

	// Title and Description carry the seed page's values for prompt
	// construction.
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
