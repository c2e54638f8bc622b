// -----------------------------------------------------------------------
// Claude Provider - analysis completions via the Anthropic API
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
)

// ClaudeService implements the LLMService interface using the Anthropic
// Messages API. Claude has no grounding tools here, so ToolUsage stays empty.
type ClaudeService struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	client  anthropic.Client
	limiter *rate.Limiter
	timeout time.Duration
}

var _ interfaces.LLMService = (*ClaudeService)(nil)

func NewClaudeService(config *common.Config, logger arbor.ILogger) (*ClaudeService, error) {
	if config.Claude.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY, DOCIFY_CLAUDE_API_KEY, or claude.api_key in config)")
	}

	if config.Claude.Model == "" {
		config.Claude.Model = "claude-haiku-3-5-20241022"
	}
	if config.Claude.MaxTokens <= 0 {
		config.Claude.MaxTokens = 4000
	}

	rateLimit, err := time.ParseDuration(config.Claude.RateLimit)
	if err != nil || rateLimit <= 0 {
		rateLimit = time.Second
	}

	service := &ClaudeService{
		config:  &config.Claude,
		logger:  logger,
		client:  anthropic.NewClient(option.WithAPIKey(config.Claude.APIKey)),
		limiter: rate.NewLimiter(rate.Every(rateLimit), 1),
		timeout: config.ClaudeTimeout(),
	}

	logger.Info().
		Str("model", config.Claude.Model).
		Dur("timeout", service.timeout).
		Int("max_tokens", config.Claude.MaxTokens).
		Msg("Claude LLM service initialized")

	return service, nil
}

// Analyze sends one prompt and returns the completion text.
func (s *ClaudeService) Analyze(ctx context.Context, prompt string) (*interfaces.Completion, error) {
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
		Msg("Starting Claude analysis")

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no response generated from Claude")
	}

	s.logger.Debug().
		Int("response_length", text.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Claude analysis complete")

	return &interfaces.Completion{
		Text:  text.String(),
		Model: s.config.Model,
	}, nil
}

func (s *ClaudeService) Provider() string {
	return string(common.LLMProviderClaude)
}

func (s *ClaudeService) Close() error {
	s.logger.Debug().Msg("Closing Claude LLM service")
	return nil
}
