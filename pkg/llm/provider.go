package llm

import (
	"context"
)

// Message is one chat turn in a provider-agnostic shape. Roles follow the
// OpenAI convention: "user", "assistant", "system".
type Message struct {
	Role    string
	Content string
}

// Option tunes a single call without touching provider defaults.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override the provider's default model
	JSONOutput  bool   // Constrain the model to emit a JSON object
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithJSONOutput asks the backend for structured JSON. The query analyzer
// depends on this: it parses the reply as a JSON object and a chatty
// preamble would force the repair path on every call.
func WithJSONOutput() Option {
	return func(o *Options) {
		o.JSONOutput = true
	}
}

// LLMProvider is the contract for any LLM backend. Callers pass a deadline
// through ctx; a timed-out call returns ctx.Err() and the caller's
// deterministic fallback takes over.
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
