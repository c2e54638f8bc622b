// -------------------------------------------------------------------------
// Orchestrator sequences one analysis run: validate, crawl, prompt, LLM
// call with retry, response validation, persistence. Runs are synchronous
// and request scoped.
// -------------------------------------------------------------------------

package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
	"github.com/ternarybob/docify/internal/services/llm"
)

// RunResult summarizes one analysis run for the HTTP response.
type RunResult struct {
	DocumentID     string                `json:"document_id"`
	Status         models.DocumentStatus `json:"status"`
	Message        string                `json:"message"`
	PagesCrawled   int                   `json:"pages_crawled,omitempty"`
	WordCount      int                   `json:"word_count,omitempty"`
	BlockCount     int                   `json:"block_count,omitempty"`
	ToolsUsed      []string              `json:"tools_used,omitempty"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`

	// SuggestedAction classifies failures for the caller: retry_later,
	// check_later, rescrape, or retry.
	SuggestedAction string `json:"suggested_action,omitempty"`
}

// Service runs the analysis pipeline end to end.
type Service struct {
	config   *common.Config
	logger   arbor.ILogger
	crawler  interfaces.CrawlService
	analyzer interfaces.AnalyzerService
	llm      interfaces.LLMService
	storage  interfaces.DocumentStorage
	events   interfaces.EventService
	retry    *llm.RetryPolicy
}

// NewService wires the pipeline services together.
func NewService(
	config *common.Config,
	logger arbor.ILogger,
	crawler interfaces.CrawlService,
	analyzer interfaces.AnalyzerService,
	llmService interfaces.LLMService,
	storage interfaces.DocumentStorage,
	events interfaces.EventService,
) *Service {
	return &Service{
		config:   config,
		logger:   logger,
		crawler:  crawler,
		analyzer: analyzer,
		llm:      llmService,
		storage:  storage,
		events:   events,
		retry:    llm.NewRetryPolicy(config.LLM.MaxRetries, config.RetryBaseDelay()),
	}
}

// Process runs one analysis request to completion or failure. The returned
// RunResult is populated on both paths; err is non-nil on failure.
func (s *Service) Process(ctx context.Context, req *models.AnalyzeRequest) (*RunResult, error) {
	start := time.Now()

	if err := s.validate(req); err != nil {
		return s.fail(ctx, req, start, nil, fmt.Errorf("invalid request: %w", err))
	}

	s.logger.Info().
		Str("document_id", req.DocumentID).
		Str("url", req.URL).
		Msg("Starting analysis run")

	doc, err := s.loadOrCreateDocument(ctx, req)
	if err != nil {
		return s.fail(ctx, req, start, nil, err)
	}

	if err := s.transition(ctx, doc, models.DocumentStatusScraping, "Crawling site content"); err != nil {
		return s.fail(ctx, req, start, nil, err)
	}

	crawl, err := s.crawler.Crawl(ctx, req.URL, interfaces.CrawlOptions{})
	if err != nil {
		return s.fail(ctx, req, start, nil, fmt.Errorf("scraping failed: %w", err))
	}

	doc.ScrapedContent = crawl.CombinedBody
	doc.WordCount = crawl.TotalWordCount
	doc.PagesCrawled = crawl.PagesCrawled
	if doc.Title == "" {
		doc.Title = crawl.Title
	}
	if err := s.transition(ctx, doc, models.DocumentStatusAnalyzing, "Analyzing content"); err != nil {
		return s.fail(ctx, req, start, nil, err)
	}

	prompt := s.analyzer.BuildPrompt(crawl, req.Instructions)

	completion, err := s.callLLM(ctx, prompt)
	if err != nil {
		return s.fail(ctx, req, start, completion, fmt.Errorf("analysis failed: %w", err))
	}

	result, err := s.analyzer.ParseResponse(completion.Text)
	if err != nil {
		return s.fail(ctx, req, start, completion, fmt.Errorf("response validation failed: %w", err))
	}

	result.DocumentID = doc.ID
	result.ToolUsage = toolUsageFromCompletion(completion)
	result.ProcessingSeconds = time.Since(start).Seconds()

	if err := doc.SetAnalysis(result); err != nil {
		return s.fail(ctx, req, start, completion, fmt.Errorf("failed to store analysis: %w", err))
	}

	if err := s.transition(ctx, doc, models.DocumentStatusCompleted, "Analysis complete"); err != nil {
		return s.fail(ctx, req, start, completion, err)
	}

	elapsed := time.Since(start).Seconds()
	s.logger.Info().
		Str("document_id", doc.ID).
		Int("pages_crawled", crawl.PagesCrawled).
		Int("blocks", len(result.Blocks)).
		Float64("elapsed_seconds", elapsed).
		Msg("Analysis run completed")

	return &RunResult{
		DocumentID:     doc.ID,
		Status:         models.DocumentStatusCompleted,
		Message:        fmt.Sprintf("Analyzed %d pages into %d blocks", crawl.PagesCrawled, len(result.Blocks)),
		PagesCrawled:   crawl.PagesCrawled,
		WordCount:      crawl.TotalWordCount,
		BlockCount:     len(result.Blocks),
		ToolsUsed:      toolNames(completion),
		ElapsedSeconds: elapsed,
	}, nil
}

func (s *Service) validate(req *models.AnalyzeRequest) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	if req.DocumentID == "" {
		return fmt.Errorf("document_id is required")
	}
	if req.URL == "" {
		return fmt.Errorf("url is required")
	}

	if err := common.ValidateScrapeURL(req.URL, s.logger); err != nil {
		return err
	}

	if !s.config.AllowTestURLs() && isTestURL(req.URL) {
		return fmt.Errorf("test URLs are not allowed in production")
	}

	return nil
}

func isTestURL(rawURL string) bool {
	lowered := strings.ToLower(rawURL)
	for _, host := range []string{"localhost", "127.0.0.1", "0.0.0.0", "[::1]"} {
		if strings.Contains(lowered, host) {
			return true
		}
	}
	return false
}

// loadOrCreateDocument fetches the triggering document, creating a pending
// record when the trigger references an ID the store has not seen.
func (s *Service) loadOrCreateDocument(ctx context.Context, req *models.AnalyzeRequest) (*models.Document, error) {
	doc, err := s.storage.Get(ctx, req.DocumentID)
	if err == nil {
		if req.Instructions != "" {
			doc.Instructions = req.Instructions
		}
		return doc, nil
	}

	doc = models.NewDocument(req.URL, req.Title, req.Instructions, req.UserID)
	doc.ID = req.DocumentID
	if err := s.storage.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	s.logger.Debug().Str("document_id", doc.ID).Msg("Created document record for trigger")
	return doc, nil
}

// transition saves the document with a new status and publishes the change.
func (s *Service) transition(ctx context.Context, doc *models.Document, status models.DocumentStatus, message string) error {
	doc.Status = status
	if status != models.DocumentStatusFailed {
		doc.ErrorMessage = ""
	}

	if err := s.storage.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist status %s: %w", status, err)
	}

	s.publish(doc.ID, status, message)
	return nil
}

// callLLM invokes the provider under the retry policy.
func (s *Service) callLLM(ctx context.Context, prompt string) (*interfaces.Completion, error) {
	var completion *interfaces.Completion

	err := s.retry.Execute(ctx, s.logger, func() error {
		var callErr error
		completion, callErr = s.llm.Analyze(ctx, prompt)
		return callErr
	})
	if err != nil {
		return completion, err
	}
	return completion, nil
}

// fail marks the run failed, best-effort persists the status, and returns a
// failure result alongside the error.
func (s *Service) fail(ctx context.Context, req *models.AnalyzeRequest, start time.Time, completion *interfaces.Completion, runErr error) (*RunResult, error) {
	action := suggestAction(runErr)
	elapsed := time.Since(start).Seconds()

	s.logger.Error().
		Err(runErr).
		Str("document_id", req.DocumentID).
		Str("suggested_action", action).
		Float64("elapsed_seconds", elapsed).
		Msg("Analysis run failed")

	if req.DocumentID != "" {
		if err := s.storage.UpdateStatus(ctx, req.DocumentID, models.DocumentStatusFailed, runErr.Error()); err != nil {
			s.logger.Warn().
				Err(err).
				Str("document_id", req.DocumentID).
				Msg("Failed to persist failed status")
		}
		s.publish(req.DocumentID, models.DocumentStatusFailed, runErr.Error())
	}

	return &RunResult{
		DocumentID:      req.DocumentID,
		Status:          models.DocumentStatusFailed,
		Message:         runErr.Error(),
		ToolsUsed:       toolNames(completion),
		ElapsedSeconds:  elapsed,
		SuggestedAction: action,
	}, runErr
}

func (s *Service) publish(documentID string, status models.DocumentStatus, message string) {
	if s.events == nil {
		return
	}
	s.events.PublishStatus(interfaces.StatusEvent{
		DocumentID: documentID,
		Status:     status,
		Message:    message,
		Timestamp:  time.Now(),
	})
}

func toolUsageFromCompletion(completion *interfaces.Completion) []models.ToolUsage {
	if completion == nil || len(completion.ToolUsage) == 0 {
		return nil
	}
	usage := make([]models.ToolUsage, 0, len(completion.ToolUsage))
	for _, tool := range completion.ToolUsage {
		usage = append(usage, models.ToolUsage{
			Tool:      tool.Tool,
			Detail:    tool.Detail,
			Timestamp: tool.Timestamp,
		})
	}
	return usage
}

func toolNames(completion *interfaces.Completion) []string {
	if completion == nil || len(completion.ToolUsage) == 0 {
		return nil
	}
	names := make([]string, 0, len(completion.ToolUsage))
	for _, tool := range completion.ToolUsage {
		names = append(names, tool.Tool)
	}
	return names
}
