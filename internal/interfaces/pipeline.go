package interfaces

import (
	"context"
	"net/http"

	"github.com/ternarybob/docify/internal/models"
)

// FetchResult carries the outcome of fetching one URL. HTML is nil when
// every tier failed; Fetch itself does not error in that case.
type FetchResult struct {
	URL                string
	HTML               []byte
	StatusCode         int
	Header             http.Header
	Method             string
	RenderingAttempted bool
}

// FetchService retrieves raw page content, rotating header profiles and
// escalating to rendering tiers when plain HTTP comes back thin.
type FetchService interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
	Close() error
}

// ExtractService turns raw fetched bytes into normalized content records.
type ExtractService interface {
	DetectKind(header http.Header, url string) models.ContentKind
	Extract(ctx context.Context, raw []byte, kind models.ContentKind, url string) (*models.ContentRecord, error)
}

// CrawlOptions bounds a site walk.
type CrawlOptions struct {
	MaxPages int
}

// CrawlService walks a site breadth-first from a seed URL.
type CrawlService interface {
	Crawl(ctx context.Context, seedURL string, opts CrawlOptions) (*models.CrawlResult, error)
}

// AnalyzerService builds prompts and validates LLM responses into analysis
// results.
type AnalyzerService interface {
	BuildPrompt(content *models.CrawlResult, instructions string) string
	ParseResponse(raw string) (*models.AnalysisResult, error)
}

// ReportService renders a completed document's analysis as a PDF.
type ReportService interface {
	Render(ctx context.Context, doc *models.Document) ([]byte, error)
}
