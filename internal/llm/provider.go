// Package llm abstracts the chat-completion providers the harness drives
// benchmark prompts through. Providers are text-only: MCQ evaluation never
// exposes tools to the model.
package llm

import "context"

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Message is a single role/content turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a completion request.
type Request struct {
	Messages    []Message
	System      string
	MaxTokens   int
	Temperature float64
}

// Usage reports token counts for a completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the provider-neutral completion result.
type Response struct {
	Text       string
	StopReason string
	Usage      Usage
	LatencyMs  int64
}
