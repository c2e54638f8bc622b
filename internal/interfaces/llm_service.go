package interfaces

import (
	"context"
	"time"
)

// Completion is the raw output of one LLM call, before any parsing.
type Completion struct {
	// Text is the concatenated text content of the response.
	Text string

	// ToolUsage records tools the model invoked while producing the
	// response (search grounding, URL context), when the provider
	// reports them.
	ToolUsage []CompletionToolUsage

	// Model is the model identifier that produced the response.
	Model string
}

// CompletionToolUsage is one tool invocation reported by the provider.
type CompletionToolUsage struct {
	Tool      string
	Detail    string
	Timestamp time.Time
}

// LLMService defines the interface for analysis completions. Implementations
// wrap a single provider; retry and rate limiting sit in front of them.
type LLMService interface {
	// Analyze sends the prompt and returns the model's completion.
	Analyze(ctx context.Context, prompt string) (*Completion, error)

	// Provider returns the provider name ("gemini", "claude") for logging.
	Provider() string

	// Close releases provider resources.
	Close() error
}
