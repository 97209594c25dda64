package client

import (
	"context"
	"errors"
	"fmt"

	"llmchat/internal/models"
)

var (
	// ErrUnknownProvider is matched by every UnknownProviderError.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrImageGenerationUnsupported is returned by adapters whose vendor has no
	// image endpoint.
	ErrImageGenerationUnsupported = errors.New("image generation is not supported")
	// ErrMissingAPIKey means the provider configuration carries no credentials.
	ErrMissingAPIKey = errors.New("API key is not configured")
)

// ChatMessage is one turn of the conversation sent to a vendor.
type ChatMessage struct {
	Role    models.Role `json:"role"`
	Content string      `json:"content"`
}

// StreamRequest carries the full conversation context, oldest first.
type StreamRequest struct {
	Messages    []ChatMessage
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// UpdateFunc receives the full text accumulated so far, never a delta.
type UpdateFunc func(content string)

// Provider is the uniform streaming-completion contract every vendor adapter
// implements.
type Provider interface {
	// Name returns the vendor display name used in error messages.
	Name() string

	// StreamCompletion blocks until the vendor stream ends. onUpdate fires once
	// per non-empty delta with the accumulated text.
	StreamCompletion(ctx context.Context, req StreamRequest, onUpdate UpdateFunc) error
}

// ImageGenerator is implemented by adapters that can produce images.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, req models.ImageGenerationRequest) ([]models.GeneratedImage, error)
}

// ProviderError normalises transport and vendor failures.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// UnknownProviderError is returned by the factory for unrecognised tags.
type UnknownProviderError struct {
	ID string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %s", e.ID)
}

func (e *UnknownProviderError) Is(target error) bool {
	return target == ErrUnknownProvider
}
