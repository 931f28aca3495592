package llm

import "context"

// Request is one generation request. SystemPrompt may be empty; providers
// send it only when set.
type Request struct {
	Prompt       string
	SystemPrompt string
}

// Client performs exactly one generation call per Generate invocation.
// No retry, no response classification; both are layered above.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GenerateFunc adapts a function to the Client interface, for stubs in tests.
type GenerateFunc func(ctx context.Context, req Request) (string, error)

func (f GenerateFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
