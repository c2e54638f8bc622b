// -----------------------------------------------------------------------
// Site Walker - breadth-first crawl of a seed URL's domain
// -----------------------------------------------------------------------

package walker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
)

const minRecordChars = 50

// Service walks a site breadth-first from a seed URL, fetching and
// extracting each page, and merges the results into a single CrawlResult.
type Service struct {
	fetcher   interfaces.FetchService
	extractor interfaces.ExtractService
	config    *common.CrawlerConfig
	limiter   *RateLimiter
	logger    arbor.ILogger
}

var _ interfaces.CrawlService = (*Service)(nil)

func NewService(fetcher interfaces.FetchService, extractor interfaces.ExtractService, config *common.CrawlerConfig, logger arbor.ILogger) *Service {
	return &Service{
		fetcher:   fetcher,
		extractor: extractor,
		config:    config,
		limiter:   NewRateLimiter(config.RequestDelay),
		logger:    logger,
	}
}

// Crawl visits up to opts.MaxPages same-domain pages starting at seedURL,
// within the configured time budget. The seed page always counts first;
// frontier expansion only happens when the budget allows more than one page.
func (s *Service) Crawl(ctx context.Context, seedURL string, opts interfaces.CrawlOptions) (*models.CrawlResult, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = s.config.MaxPages
	}

	deadline := time.Now().Add(s.config.TimeBudget)
	if s.config.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	filter := NewLinkFilter(seedURL)
	queueCap := maxPages * 3
	visited := map[string]bool{normalizeURL(seedURL): true}
	queue := []string{seedURL}

	var records []*models.ContentRecord

	for len(queue) > 0 && len(records) < maxPages {
		if err := ctx.Err(); err != nil {
			s.logger.Warn().
				Str("seed_url", seedURL).
				Int("pages_crawled", len(records)).
				Msg("Crawl stopped at time budget")
			break
		}

		pageURL := queue[0]
		queue = queue[1:]

		record, links := s.visit(ctx, pageURL)
		if record != nil {
			records = append(records, record)
			// Only expand the frontier while the page budget allows it.
			if len(records) >= maxPages {
				break
			}
		}
		for _, link := range links {
			if len(visited) >= queueCap {
				break
			}
			normalized := normalizeURL(link.URL)
			if visited[normalized] {
				continue
			}
			if result := filter.FilterURL(link.URL); !result.ShouldEnqueue {
				continue
			}
			visited[normalized] = true
			queue = append(queue, link.URL)
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no content could be extracted from %s", seedURL)
	}

	return s.buildResult(seedURL, records), nil
}

// visit fetches and extracts one page. Returns nil when the page yields
// nothing usable; the crawl moves on.
func (s *Service) visit(ctx context.Context, pageURL string) (*models.ContentRecord, []models.Link) {
	if err := s.limiter.Wait(ctx, pageURL); err != nil {
		return nil, nil
	}

	fetched, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil || fetched == nil || len(fetched.HTML) == 0 {
		s.logger.Debug().
			Str("url", pageURL).
			Msg("Page fetch produced no content")
		return nil, nil
	}

	kind := s.extractor.DetectKind(fetched.Header, pageURL)
	record, err := s.extractor.Extract(ctx, fetched.HTML, kind, pageURL)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("url", pageURL).
			Str("kind", string(kind)).
			Msg("Page extraction failed")
		return nil, nil
	}

	if len(record.Body) < minRecordChars {
		s.logger.Debug().
			Str("url", pageURL).
			Int("chars", len(record.Body)).
			Msg("Page body too short, skipping")
		return nil, record.Links
	}

	return record, record.Links
}

func (s *Service) buildResult(seedURL string, records []*models.ContentRecord) *models.CrawlResult {
	combined, truncated := combineRecords(records)

	result := &models.CrawlResult{
		SeedURL:      seedURL,
		PagesCrawled: len(records),
		CombinedBody: combined,
		Truncated:    truncated,
		KindCounts:   make(map[models.ContentKind]int),
		Title:        records[0].Title,
		Description:  records[0].Description,
	}

	for _, record := range records {
		result.TotalWordCount += record.WordCount
		result.KindCounts[record.Kind]++
		result.Subpages = append(result.Subpages, models.SubpageRef{
			URL:       record.URL,
			Title:     record.Title,
			WordCount: record.WordCount,
			Kind:      record.Kind,
		})
	}

	s.logger.Info().
		Str("seed_url", seedURL).
		Int("pages", result.PagesCrawled).
		Int("words", result.TotalWordCount).
		Bool("truncated", result.Truncated).
		Msg("Crawl complete")

	return result
}

// normalizeURL strips fragments and trailing slashes so near-identical URLs
// dedupe in the visited set.
func normalizeURL(rawURL string) string {
	trimmed := rawURL
	if idx := strings.Index(trimmed, "#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimRight(trimmed, "/")
}
