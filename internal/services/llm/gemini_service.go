// -----------------------------------------------------------------------
// Gemini Provider - grounded analysis completions via the Gemini API
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
)

// GeminiService implements the LLMService interface using the Gemini API
// with search grounding and URL context tools enabled.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

var _ interfaces.LLMService = (*GeminiService)(nil)

func NewGeminiService(config *common.Config, logger arbor.ILogger) (*GeminiService, error) {
	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY, DOCIFY_GEMINI_API_KEY, or gemini.api_key in config)")
	}

	if config.Gemini.Model == "" {
		config.Gemini.Model = "gemini-2.5-flash"
	}

	rateLimit, err := time.ParseDuration(config.Gemini.RateLimit)
	if err != nil || rateLimit <= 0 {
		rateLimit = 4 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  &config.Gemini,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(rateLimit), 1),
		timeout: config.GeminiTimeout(),
	}

	logger.Info().
		Str("model", config.Gemini.Model).
		Dur("timeout", service.timeout).
		Dur("rate_limit", rateLimit).
		Msg("Gemini LLM service initialized")

	return service, nil
}

// Analyze sends one prompt and returns the completion text along with the
// grounding tool activity the model reported.
func (s *GeminiService) Analyze(ctx context.Context, prompt string) (*interfaces.Completion, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("prompt_length", len(prompt)).
		Str("model", s.config.Model).
		Msg("Starting Gemini analysis")

	generateConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(s.config.Temperature),
		TopP:            genai.Ptr(s.config.TopP),
		MaxOutputTokens: int32(s.config.MaxTokens),
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(0)),
		},
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
			{URLContext: &genai.URLContext{}},
		},
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, generateConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini generation failed: %w", err)
	}

	completion := &interfaces.Completion{Model: s.config.Model}
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			var text strings.Builder
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() == 0 {
				continue
			}
			completion.Text = text.String()
			completion.ToolUsage = toolUsageFromCandidate(candidate)
			break
		}
	}

	if completion.Text == "" {
		return nil, fmt.Errorf("no response generated from Gemini")
	}

	s.logger.Debug().
		Int("response_length", len(completion.Text)).
		Int("tool_calls", len(completion.ToolUsage)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini analysis complete")

	return completion, nil
}

// toolUsageFromCandidate flattens grounding metadata into the tool activity
// log stored with the analysis.
func toolUsageFromCandidate(candidate *genai.Candidate) []interfaces.CompletionToolUsage {
	var usage []interfaces.CompletionToolUsage
	now := time.Now().UTC()

	if candidate.GroundingMetadata != nil {
		for _, query := range candidate.GroundingMetadata.WebSearchQueries {
			usage = append(usage, interfaces.CompletionToolUsage{
				Tool:      "google_search",
				Detail:    query,
				Timestamp: now,
			})
		}
	}
	if candidate.URLContextMetadata != nil {
		for _, meta := range candidate.URLContextMetadata.URLMetadata {
			if meta == nil {
				continue
			}
			usage = append(usage, interfaces.CompletionToolUsage{
				Tool:      "url_context",
				Detail:    meta.RetrievedURL,
				Timestamp: now,
			})
		}
	}

	return usage
}

func (s *GeminiService) Provider() string {
	return string(common.LLMProviderGemini)
}

func (s *GeminiService) Close() error {
	s.logger.Debug().Msg("Closing Gemini LLM service")
	s.client = nil
	return nil
}
