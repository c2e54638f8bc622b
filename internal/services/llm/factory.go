package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
)

// NewLLMService creates the provider implementation selected by
// llm.default_provider. Falls back to the other provider when the preferred
// one has no API key configured.
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := cfg.LLM.DefaultProvider
	if provider == "" {
		provider = common.LLMProviderGemini
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing LLM service")

	switch provider {
	case common.LLMProviderGemini:
		if cfg.Gemini.APIKey == "" && cfg.Claude.APIKey != "" {
			logger.Warn().Msg("No Gemini API key configured, falling back to Claude")
			return NewClaudeService(cfg, logger)
		}
		return NewGeminiService(cfg, logger)

	case common.LLMProviderClaude:
		if cfg.Claude.APIKey == "" && cfg.Gemini.APIKey != "" {
			logger.Warn().Msg("No Anthropic API key configured, falling back to Gemini")
			return NewGeminiService(cfg, logger)
		}
		return NewClaudeService(cfg, logger)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
