// -----------------------------------------------------------------------
// Fetcher Service - Profile rotation and rendering escalation
// -----------------------------------------------------------------------

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/httpclient"
	"github.com/ternarybob/docify/internal/interfaces"
)

// remoteRenderTier abstracts the hosted rendering service for testing.
type remoteRenderTier interface {
	Enabled() bool
	Render(ctx context.Context, url string) ([]byte, error)
}

// chromeRenderTier abstracts local headless Chrome for testing.
type chromeRenderTier interface {
	Render(ctx context.Context, url string, profile HeaderProfile) ([]byte, error)
	Close() error
}

// Service fetches page content by rotating header profiles and escalating
// to rendering tiers when plain HTTP comes back thin. A fully exhausted
// fetch returns a result with nil HTML rather than an error; callers decide
// what failure means for them.
type Service struct {
	config *common.FetcherConfig
	client *http.Client
	retry  *RetryPolicy
	remote remoteRenderTier
	chrome chromeRenderTier
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.FetchService = (*Service)(nil)

// NewService creates a fetcher with the real rendering tiers.
func NewService(config *common.FetcherConfig, logger arbor.ILogger) (*Service, error) {
	client, err := httpclient.NewScrapeClient(config.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrape client: %w", err)
	}

	svc := &Service{
		config: config,
		client: client,
		retry:  NewRetryPolicy(),
		remote: NewRemoteRenderer(config, logger),
		logger: logger,
	}
	if config.EnableChrome {
		svc.chrome = NewChromeRenderer(config, logger)
	}
	return svc, nil
}

// newServiceWithTiers wires custom rendering tiers, used by tests.
func newServiceWithTiers(config *common.FetcherConfig, client *http.Client, remote remoteRenderTier, chrome chromeRenderTier, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		client: client,
		retry:  NewRetryPolicy(),
		remote: remote,
		chrome: chrome,
		logger: logger,
	}
}

// Fetch tries each header profile in order, accepting the first 200
// response whose body meets the size threshold. Smaller successful bodies
// are kept as the best candidate while escalation continues through the
// remote renderer and headless Chrome. The largest body wins.
func (s *Service) Fetch(ctx context.Context, url string) (*interfaces.FetchResult, error) {
	result := &interfaces.FetchResult{URL: url}

	var best []byte
	bestMethod := ""
	var bestStatus int
	var bestHeader http.Header

	for _, profile := range Profiles() {
		body, status, header, err := s.fetchWithProfile(ctx, url, profile)
		if err != nil {
			s.logger.Debug().
				Str("url", url).
				Str("profile", profile.Name).
				Err(err).
				Msg("Profile fetch failed")
			continue
		}
		if status != http.StatusOK || len(body) == 0 {
			continue
		}

		if len(body) >= s.config.BodyThreshold {
			result.HTML = body
			result.StatusCode = status
			result.Header = header
			result.Method = "http:" + profile.Name
			s.logger.Debug().
				Str("url", url).
				Str("profile", profile.Name).
				Int("bytes", len(body)).
				Msg("Fetch succeeded without rendering")
			return result, nil
		}

		// Undersized body: keep the biggest candidate and keep escalating.
		if len(body) > len(best) {
			best = body
			bestMethod = "http:" + profile.Name
			bestStatus = status
			bestHeader = header
		}
	}

	// Escalation tiers. Rendered output replaces the candidate only when
	// it is bigger.
	result.RenderingAttempted = true

	if s.remote != nil && s.remote.Enabled() {
		if body, err := s.remote.Render(ctx, url); err != nil {
			s.logger.Debug().Str("url", url).Err(err).Msg("Remote render failed")
		} else if len(body) > len(best) {
			best = body
			bestMethod = "render:remote"
			bestStatus = http.StatusOK
			bestHeader = nil
		}
	}

	if s.chrome != nil {
		if body, err := s.chrome.Render(ctx, url, Profiles()[0]); err != nil {
			s.logger.Debug().Str("url", url).Err(err).Msg("Chrome render failed")
		} else if len(body) > len(best) {
			best = body
			bestMethod = "render:chrome"
			bestStatus = http.StatusOK
			bestHeader = nil
		}
	}

	if len(best) == 0 {
		s.logger.Warn().Str("url", url).Msg("All fetch tiers exhausted without content")
		return result, nil
	}

	result.HTML = best
	result.StatusCode = bestStatus
	result.Header = bestHeader
	result.Method = bestMethod
	return result, nil
}

func (s *Service) fetchWithProfile(ctx context.Context, url string, profile HeaderProfile) ([]byte, int, http.Header, error) {
	var body []byte
	var header http.Header

	status, err := s.retry.ExecuteWithRetry(ctx, s.logger, func() (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		for name, value := range profile.Headers {
			req.Header.Set(name, value)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, err
		}

		body = data
		header = resp.Header
		return resp.StatusCode, nil
	})
	if err != nil {
		return nil, status, nil, err
	}

	return body, status, header, nil
}

// Close shuts down the rendering tiers.
func (s *Service) Close() error {
	if s.chrome != nil {
		return s.chrome.Close()
	}
	return nil
}
