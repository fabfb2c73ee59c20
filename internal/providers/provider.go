// Package providers implements text-generation clients behind a common
// interface, with config-driven registration and per-provider rate limits.
package providers

import (
	"context"
	"time"
)

// LLMClient is the interface for text generation requests.
type LLMClient interface {
	// Generate sends a single-prompt completion request.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// Name returns the client identifier (e.g., "gemini").
	Name() string
}

// GenerateRequest is a request to an LLM.
type GenerateRequest struct {
	// Required
	Prompt string `json:"prompt"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Max retry attempts (uses client default if zero)
	MaxRetries int `json:"-"`

	// Request tracking
	RequestID string `json:"-"`
}

// GenerateResult is the complete response from an LLM call.
type GenerateResult struct {
	// Response content
	Text string `json:"text"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}
