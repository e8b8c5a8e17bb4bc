package service

import (
	"context"

	"egile/internal/model"
)

// AIClient is the interface for AI intent classifiers
type AIClient interface {
	// AnalyzeIntent classifies one user message (non-streaming)
	AnalyzeIntent(ctx context.Context, message string) (*AIIntentResponse, error)

	// AnalyzeIntentStream classifies with streaming support.
	// The callback receives (thinkingContent, regularContent) for each chunk
	AnalyzeIntentStream(ctx context.Context, message string, callback func(thinking, content string) error) (*AIIntentResponse, error)

	// CreateEmbeddings generates embeddings for texts
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// IsEnabled returns whether the AI client is configured and ready
	IsEnabled() bool
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g., Grok reasoning models)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool

	// Provider-specific metadata
	Metadata map[string]interface{}
}

// AIIntentResponse is the classification returned by the AI provider. Every
// field is a pointer so a missing key is distinguishable from a zero value;
// the orchestrator falls back to the rule engine when required keys are
// absent.
type AIIntentResponse struct {
	Intent         *string       `json:"intent,omitempty"`
	Action         *string       `json:"action,omitempty"`
	Confidence     *float64      `json:"confidence,omitempty"`
	Parameters     *model.Params `json:"parameters,omitempty"`
	RequiresAction *bool         `json:"requires_action,omitempty"`
}

// Complete reports whether every field the fallback contract needs is
// present.
func (r *AIIntentResponse) Complete() bool {
	return r != nil && r.Intent != nil && r.Action != nil &&
		r.Confidence != nil && r.RequiresAction != nil
}

// Ensure GrokClient implements AIClient
var _ AIClient = (*GrokClient)(nil)
