// Package models contains shared data models used across the Meeteo codebase.
package models

import "context"

// AIProvider is the core interface that all language-model integrations must implement.
// Never call specific AI providers directly; always inject this interface.
type AIProvider interface {
	// Complete sends one prompt (optionally with an image) and returns the model's text reply.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name returns the provider identifier (e.g., "anthropic", "gemini").
	Name() string
}

// CompletionRequest is the input to a single language-model call.
type CompletionRequest struct {
	Prompt    string
	Image     *ImageInput // Optional; only the outfit critique sends one
	MaxTokens int
}

// ImageInput is an inline image attached to a CompletionRequest.
type ImageInput struct {
	MediaType string
	Data      []byte
}
