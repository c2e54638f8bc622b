package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
	"github.com/ternarybob/docify/internal/services/analyzer"
)

type fakeCrawler struct {
	result *models.CrawlResult
	err    error
	calls  int
}

func (f *fakeCrawler) Crawl(ctx context.Context, seedURL string, opts interfaces.CrawlOptions) (*models.CrawlResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeLLM) Analyze(ctx context.Context, prompt string) (*interfaces.Completion, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	text := ""
	if idx < len(f.responses) {
		text = f.responses[idx]
	}
	return &interfaces.Completion{
		Text:  text,
		Model: "test-model",
		ToolUsage: []interfaces.CompletionToolUsage{
			{Tool: "google_search", Detail: "example query"},
		},
	}, nil
}

func (f *fakeLLM) Provider() string { return "fake" }
func (f *fakeLLM) Close() error     { return nil }

type fakeStorage struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{docs: make(map[string]*models.Document)}
}

func (f *fakeStorage) Save(ctx context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeStorage) Get(ctx context.Context, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeStorage) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeStorage) List(ctx context.Context, limit, offset int) ([]*models.Document, error) {
	return nil, nil
}

func (f *fakeStorage) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	doc.Status = status
	doc.ErrorMessage = errorMessage
	return nil
}

func (f *fakeStorage) ListByStatus(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	return nil, nil
}

func (f *fakeStorage) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs), nil
}

func (f *fakeStorage) GetStats(ctx context.Context) (*models.DocumentStats, error) {
	return &models.DocumentStats{}, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []interfaces.StatusEvent
}

func (f *fakeEvents) PublishStatus(event interfaces.StatusEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEvents) HandleWebSocket(w http.ResponseWriter, r *http.Request) {}
func (f *fakeEvents) ClientCount() int                                      { return 0 }
func (f *fakeEvents) Close() error                                          { return nil }

func (f *fakeEvents) statuses() []models.DocumentStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	statuses := make([]models.DocumentStatus, 0, len(f.events))
	for _, event := range f.events {
		statuses = append(statuses, event.Status)
	}
	return statuses
}

func testCrawlResult() *models.CrawlResult {
	return &models.CrawlResult{
		SeedURL:        "https://docs.example.com",
		PagesCrawled:   3,
		TotalWordCount: 1200,
		CombinedBody:   "==== HTML CONTENT (3 files) ====\n\nURL: https://docs.example.com\nTitle: Example\n\nbody\n\n",
		Title:          "Example Docs",
	}
}

func validLLMResponse() string {
	return `{
		"summary": "Example Docs covers installation and configuration.",
		"blocks": [
			{"id": "b1", "type": "summary", "size": "medium", "title": "Overview", "content": "Covers install and config."},
			{"id": "b2", "type": "key_points", "size": "small", "title": "Key Points", "content": "**Install** ***One command setup.***"}
		]
	}`
}

func newTestService(t *testing.T, crawler *fakeCrawler, llmSvc *fakeLLM, storage *fakeStorage, events *fakeEvents) *Service {
	t.Helper()

	config := common.NewDefaultConfig()
	config.LLM.MaxRetries = 2
	config.LLM.RetryBaseDelay = "1ms"

	logger := arbor.NewLogger()
	return NewService(config, logger, crawler, analyzer.NewService(logger), llmSvc, storage, events)
}

func TestProcessHappyPath(t *testing.T) {
	crawler := &fakeCrawler{result: testCrawlResult()}
	llmSvc := &fakeLLM{responses: []string{validLLMResponse()}}
	storage := newFakeStorage()
	events := &fakeEvents{}
	service := newTestService(t, crawler, llmSvc, storage, events)

	result, err := service.Process(context.Background(), &models.AnalyzeRequest{
		DocumentID: "doc_1",
		URL:        "https://docs.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, models.DocumentStatusCompleted, result.Status)
	assert.Equal(t, 3, result.PagesCrawled)
	assert.Equal(t, 1200, result.WordCount)
	assert.Equal(t, 2, result.BlockCount)
	assert.Contains(t, result.ToolsUsed, "google_search")
	assert.GreaterOrEqual(t, result.ElapsedSeconds, 0.0)

	doc, err := storage.Get(context.Background(), "doc_1")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusCompleted, doc.Status)
	assert.Equal(t, "Example Docs", doc.Title)
	assert.NotEmpty(t, doc.ScrapedContent)
	assert.NotEmpty(t, doc.AnalysisSummary)
	assert.NotEmpty(t, doc.AnalysisBlocks)
	assert.Equal(t, 1200, doc.WordCount)

	assert.Equal(t, []models.DocumentStatus{
		models.DocumentStatusScraping,
		models.DocumentStatusAnalyzing,
		models.DocumentStatusCompleted,
	}, events.statuses())
}

func TestProcessCreatesMissingDocument(t *testing.T) {
	crawler := &fakeCrawler{result: testCrawlResult()}
	llmSvc := &fakeLLM{responses: []string{validLLMResponse()}}
	storage := newFakeStorage()
	service := newTestService(t, crawler, llmSvc, storage, &fakeEvents{})

	_, err := service.Process(context.Background(), &models.AnalyzeRequest{
		DocumentID:   "doc_new",
		URL:          "https://docs.example.com",
		Title:        "Seeded Title",
		Instructions: "Focus on setup",
	})
	require.NoError(t, err)

	doc, err := storage.Get(context.Background(), "doc_new")
	require.NoError(t, err)
	assert.Equal(t, "Seeded Title", doc.Title)
	assert.Equal(t, "Focus on setup", doc.Instructions)
}

func TestProcessValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		req  *models.AnalyzeRequest
	}{
		{name: "missing document id", req: &models.AnalyzeRequest{URL: "https://example.com"}},
		{name: "missing url", req: &models.AnalyzeRequest{DocumentID: "doc_1"}},
		{name: "bad scheme", req: &models.AnalyzeRequest{DocumentID: "doc_1", URL: "ftp://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crawler := &fakeCrawler{result: testCrawlResult()}
			service := newTestService(t, crawler, &fakeLLM{}, newFakeStorage(), &fakeEvents{})

			result, err := service.Process(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, models.DocumentStatusFailed, result.Status)
			assert.Equal(t, 0, crawler.calls)
		})
	}
}

func TestProcessRejectsTestURLsInProduction(t *testing.T) {
	service := newTestService(t, &fakeCrawler{}, &fakeLLM{}, newFakeStorage(), &fakeEvents{})
	service.config.Environment = "production"

	_, err := service.Process(context.Background(), &models.AnalyzeRequest{
		DocumentID: "doc_1",
		URL:        "http://localhost:8080/docs",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test URLs")
}

func TestProcessCrawlFailureSuggestsRescrape(t *testing.T) {
	crawler := &fakeCrawler{err: fmt.Errorf("no content could be extracted from https://docs.example.com")}
	storage := newFakeStorage()
	events := &fakeEvents{}
	service := newTestService(t, crawler, &fakeLLM{}, storage, events)

	result, err := service.Process(context.Background(), &models.AnalyzeRequest{
		DocumentID: "doc_1",
		URL:        "https://docs.example.com",
	})
	require.Error(t, err)

	assert.Equal(t, models.DocumentStatusFailed, result.Status)
	assert.Equal(t, "rescrape", result.SuggestedAction)

	doc, getErr := storage.Get(context.Background(), "doc_1")
	require.NoError(t, getErr)
	assert.Equal(t, models.DocumentStatusFailed, doc.Status)
	assert.NotEmpty(t, doc.ErrorMessage)

	statuses := events.statuses()
	require.NotEmpty(t, statuses)
	assert.Equal(t, models.DocumentStatusFailed, statuses[len(statuses)-1])
}

func TestProcessRetriesTransientLLMErrors(t *testing.T) {
	crawler := &fakeCrawler{result: testCrawlResult()}
	llmSvc := &fakeLLM{
		errs:      []error{fmt.Errorf("503 service unavailable"), fmt.Errorf("429 rate limit exceeded"), nil},
		responses: []string{"", "", validLLMResponse()},
	}
	service := newTestService(t, crawler, llmSvc, newFakeStorage(), &fakeEvents{})

	result, err := service.Process(context.Background(), &models.AnalyzeRequest{
		DocumentID: "doc_1",
		URL:        "https://docs.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusCompleted, result.Status)
	assert.Equal(t, 3, llmSvc.calls)
}

func TestProcessRateLimitExhaustionSuggestsRetryLater(t *testing.T) {
	crawler := &fakeCrawler{result: testCrawlResult()}
	llmSvc := &fakeLLM{
		errs: []error{
			fmt.Errorf("429 rate limit exceeded"),
			fmt.Errorf("429 rate limit exceeded"),
			fmt.Errorf("429 rate limit exceeded"),
		},
	}
	service := newTestService(t, crawler, llmSvc, newFakeStorage(), &fakeEvents{})

	result, err := service.Process(context.Background(), &models.AnalyzeRequest{
		DocumentID: "doc_1",
		URL:        "https://docs.example.com",
	})
	require.Error(t, err)
	assert.Equal(t, "retry_later", result.SuggestedAction)
	assert.Equal(t, 3, llmSvc.calls)
}

func TestProcessFatalLLMErrorNotRetried(t *testing.T) {
	crawler := &fakeCrawler{result: testCrawlResult()}
	llmSvc := &fakeLLM{errs: []error{fmt.Errorf("invalid api key")}}
	service := newTestService(t, crawler, llmSvc, newFakeStorage(), &fakeEvents{})

	_, err := service.Process(context.Background(), &models.AnalyzeRequest{
		DocumentID: "doc_1",
		URL:        "https://docs.example.com",
	})
	require.Error(t, err)
	assert.Equal(t, 1, llmSvc.calls)
}

func TestProcessGarbageLLMOutputStillCompletes(t *testing.T) {
	crawler := &fakeCrawler{result: testCrawlResult()}
	llmSvc := &fakeLLM{responses: []string{"The site is about widgets.\nNothing structured here."}}
	storage := newFakeStorage()
	service := newTestService(t, crawler, llmSvc, storage, &fakeEvents{})

	result, err := service.Process(context.Background(), &models.AnalyzeRequest{
		DocumentID: "doc_1",
		URL:        "https://docs.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusCompleted, result.Status)

	doc, err := storage.Get(context.Background(), "doc_1")
	require.NoError(t, err)

	blocks, err := doc.Blocks()
	require.NoError(t, err)
	assert.NotEmpty(t, blocks)
}

func TestSuggestAction(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "rate limited", err: fmt.Errorf("429 quota exceeded"), expected: "retry_later"},
		{name: "overloaded", err: fmt.Errorf("model is overloaded"), expected: "retry_later"},
		{name: "network", err: fmt.Errorf("connection refused"), expected: "check_later"},
		{name: "no content", err: fmt.Errorf("no content could be extracted from https://x"), expected: "rescrape"},
		{name: "format", err: fmt.Errorf("response format not recognized"), expected: "retry"},
		{name: "unknown", err: fmt.Errorf("boom"), expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestAction(tt.err))
		})
	}
}
