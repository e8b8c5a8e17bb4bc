package service

import (
	"encoding/json"
	"strings"
)

// XAIStreamChunkParser parses xAI streaming chunks. Grok reasoning models
// interleave reasoning_content deltas with regular content.
type XAIStreamChunkParser struct{}

// ParseChunk converts an xAI-specific chunk to a generic StreamChunk
func (p *XAIStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var rawChunk struct {
		Choices []struct {
			Delta struct {
				Role             string  `json:"role,omitempty"`
				Content          string  `json:"content,omitempty"`
				ReasoningContent *string `json:"reasoning_content,omitempty"`
			} `json:"delta"`
			FinishReason string `json:"finish_reason,omitempty"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(data, &rawChunk); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{
		Metadata: make(map[string]interface{}),
	}

	if len(rawChunk.Choices) > 0 {
		delta := rawChunk.Choices[0].Delta
		chunk.Role = delta.Role
		chunk.Content = delta.Content
		if delta.ReasoningContent != nil {
			chunk.ThinkingContent = *delta.ReasoningContent
		}
		chunk.Done = rawChunk.Choices[0].FinishReason != ""
	}

	return chunk, nil
}

// IsXAIProvider checks if the base URL is the xAI API
func IsXAIProvider(baseURL string) bool {
	return strings.Contains(baseURL, "api.x.ai")
}
