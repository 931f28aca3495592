package llm

import "fmt"

// TransportError is a network or HTTP-layer failure reaching the provider,
// including non-2xx responses whose body could not be parsed.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
	}
	return fmt.Sprintf("transport error: %s", truncate(e.Message, 200))
}

// ProviderError is a well-formed error response from the provider (bad key,
// quota, malformed request). Message carries the provider's own wording.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("provider error (status %d): %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
}

// EmptyResponseError is a response that parsed successfully but contained no
// usable text content.
type EmptyResponseError struct {
	Detail string
}

func (e *EmptyResponseError) Error() string {
	if e.Detail != "" {
		return "empty response from provider: " + e.Detail
	}
	return "empty response from provider"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
